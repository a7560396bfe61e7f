package lesson

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// SupportedFormat is the fixture format major version this build reads.
const SupportedFormat = "v1"

// fixtureFile is the on-disk envelope of a catalog lesson.
type fixtureFile struct {
	Format string         `yaml:"format"`
	Lesson map[string]any `yaml:"lesson"`
}

// Catalog is an in-memory, read-only lesson store. It implements Fetcher.
type Catalog struct {
	lessons map[string]*Lesson
	order   []string
}

var _ Fetcher = (*Catalog)(nil)

// NewCatalog loads the embedded fixtures plus any *.yaml files in extraDir.
// A lesson in extraDir replaces an embedded lesson with the same id.
func NewCatalog(extraDir string) (*Catalog, error) {
	c := &Catalog{lessons: make(map[string]*Lesson)}

	sub, err := fs.Sub(fixtureFS, "fixtures")
	if err != nil {
		return nil, err
	}
	if err := c.loadFS(sub); err != nil {
		return nil, err
	}
	if extraDir != "" {
		if err := c.loadFS(os.DirFS(extraDir)); err != nil {
			return nil, fmt.Errorf("load lessons from %s: %w", extraDir, err)
		}
	}
	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		l, err := ParseFixture(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(name), err)
		}
		c.add(l)
	}
	return nil
}

func (c *Catalog) add(l *Lesson) {
	if _, exists := c.lessons[l.ID]; !exists {
		c.order = append(c.order, l.ID)
	}
	c.lessons[l.ID] = l
}

// ParseFixture decodes a YAML fixture envelope into a validated Lesson.
func ParseFixture(raw []byte) (*Lesson, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !semver.IsValid(f.Format) {
		return nil, fmt.Errorf("%w: format %q is not a semantic version", ErrInvalid, f.Format)
	}
	if major := semver.Major(f.Format); major != SupportedFormat {
		return nil, fmt.Errorf("%w: unsupported format %s (want %s.x)", ErrInvalid, f.Format, SupportedFormat)
	}
	if f.Lesson == nil {
		return nil, fmt.Errorf("%w: fixture has no lesson", ErrInvalid)
	}
	body, err := json.Marshal(f.Lesson)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Decode(body)
}

// FetchLesson returns the lesson with the given id or ErrNotFound.
func (c *Catalog) FetchLesson(ctx context.Context, id string) (*Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l, ok := c.lessons[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
	}
	return l, nil
}

// List returns every lesson in load order.
func (c *Catalog) List() []*Lesson {
	out := make([]*Lesson, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.lessons[id])
	}
	return out
}
