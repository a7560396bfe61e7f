package llm

import "context"

// transport is one vendor's wire call. It maps the request to the vendor
// SDK and the reply back, and classifies errors; validation is left to
// client.
type transport interface {
	send(ctx context.Context, model string, req Request) (*Response, error)
}

// client is the Provider every vendor constructor returns.
type client struct {
	model string
	t     transport
}

func (c *client) ModelID() string { return c.model }

func (c *client) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.t.send(ctx, c.model, req)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = c.model
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}
