// Package catalog holds the fixed table mapping violation names to legal citations.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// None is the selector value meaning "no violation". It can never be a catalog key.
const None = "無"

//go:embed default.yaml
var defaultYAML []byte

// ErrUnknownViolation is returned when a name is neither None nor a catalog key.
var ErrUnknownViolation = errors.New("unknown violation")

// Entry is one violation name with its citation.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	Citation string `yaml:"citation" json:"citation"`
}

type file struct {
	Violations []Entry `yaml:"violations"`
}

// Catalog is an ordered, read-only violation table. Safe for concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Default returns the built-in table.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load returns the table from path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML table and checks that names are unique, not reserved
// and that every citation is non-empty.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(f.Violations) == 0 {
		return nil, errors.New("no violations defined")
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(f.Violations)),
		index:   make(map[string]int, len(f.Violations)),
	}
	for i, e := range f.Violations {
		e.Name = strings.TrimSpace(e.Name)
		e.Citation = strings.TrimSpace(e.Citation)
		switch {
		case e.Name == "":
			return nil, fmt.Errorf("entry %d: empty name", i)
		case e.Name == None:
			return nil, fmt.Errorf("entry %d: %q is reserved", i, None)
		case e.Citation == "":
			return nil, fmt.Errorf("entry %d (%s): empty citation", i, e.Name)
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("entry %d: duplicate name %s", i, e.Name)
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Lookup returns the citation for name.
func (c *Catalog) Lookup(name string) (string, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return c.entries[i].Citation, true
}

// Validate accepts None and catalog keys.
func (c *Catalog) Validate(name string) error {
	if name == None {
		return nil
	}
	if _, ok := c.index[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownViolation, name)
	}
	return nil
}

// Names returns the keys in table order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Options returns the selector choices: None followed by every key.
func (c *Catalog) Options() []string {
	return append([]string{None}, c.Names()...)
}

// Entries returns a copy of the table.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
