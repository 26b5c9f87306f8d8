package messages

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"text/template"

	goerrors "github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Args is the data a message template is rendered with.
type Args map[string]any

type compiled struct {
	texts     map[ID]string
	templates map[ID]*template.Template
}

// Catalog holds the rendered form of every customizable message. Reloads swap the
// whole set at once.
type Catalog struct {
	current atomic.Pointer[compiled]
}

// NewCatalog returns a catalog with the built-in texts.
func NewCatalog() *Catalog {
	c := &Catalog{}
	set, err := compile(nil)
	if err != nil {
		// The built-in templates are constant; failing here is a programming error.
		panic(err)
	}
	c.current.Store(set)
	return c
}

// Load reads overrides from the YAML document at path. A missing document is created
// with the built-in texts. A text that does not parse keeps its built-in version and
// is reported in the returned error; the other overrides still apply.
func (c *Catalog) Load(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("messages not found, writing defaults", "path", path)
		return writeDefaults(path)
	}
	if err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}

	overrides := map[ID]message{}
	if len(bytes.TrimSpace(b)) > 0 {
		if err := yaml.Unmarshal(b, &overrides); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	set, err := compile(overrides)
	c.current.Store(set)
	return err
}

// Render expands the message with args. Rendering never fails; on a template error
// the raw text is returned and the error logged.
func (c *Catalog) Render(id ID, args Args) string {
	set := c.current.Load()

	tmpl, ok := set.templates[id]
	if !ok {
		slog.Warn("unknown message", "id", id)
		return string(id)
	}

	out, err := execute(tmpl, args)
	if err != nil {
		slog.Warn("rendering message", "id", id, "error", err)
		return set.texts[id]
	}
	return out
}

// Text returns the unrendered text of a message.
func (c *Catalog) Text(id ID) string {
	return c.current.Load().texts[id]
}

func compile(overrides map[ID]message) (*compiled, error) {
	el := goerrors.NewErrorList()
	set := &compiled{
		texts:     map[ID]string{},
		templates: map[ID]*template.Template{},
	}

	known := map[ID]bool{}
	for _, d := range defaults {
		known[d.id] = true

		text := d.Text
		if o, ok := overrides[d.id]; ok && o.Text != "" {
			text = o.Text
		}

		tmpl, err := parseTemplate(d.id, text)
		if err != nil {
			el.Add(fmt.Errorf("message %s: %w", d.id, err))
			text = d.Text
			tmpl, err = parseTemplate(d.id, text)
			if err != nil {
				return nil, fmt.Errorf("built-in message %s: %w", d.id, err)
			}
		}

		set.texts[d.id] = text
		set.templates[d.id] = tmpl
	}

	for id := range overrides {
		if !known[id] {
			slog.Warn("ignoring unknown message", "id", id)
		}
	}

	return set, el.Err()
}

func writeDefaults(path string) error {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range defaults {
		v := &yaml.Node{}
		if err := v.Encode(d.message); err != nil {
			return fmt.Errorf("encoding message %s: %w", d.id, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: string(d.id)}, v)
	}

	b, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshalling messages: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating messages dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("writing messages: %w", err)
	}
	return nil
}
