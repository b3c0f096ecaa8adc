// Package fixture loads scripted feeds from YAML or JSON into the in-memory model.
//
// A fixture describes the root children, the page each token resolves to,
// scripted token failures and the children installed by a refresh:
//
//	state: ready
//	root:
//	  - story: {id: s1, title: Hello}
//	  - {type: token, id: t1}
//	pages:
//	  t1:
//	    - story: {id: s2, title: Next}
//	failures:
//	  t1: 1
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// RootKey is the key of the root feature built from a fixture.
const RootKey domain.ChildKey = "root"

// Story is the shorthand for a cluster > card > content chain.
type Story struct {
	ID    string `mapstructure:"id"`
	Title string `mapstructure:"title"`
	Body  string `mapstructure:"body"`
	URL   string `mapstructure:"url"`
	// Card drops the cluster wrapper.
	Card bool `mapstructure:"card"`
}

// Node is one entry of the content tree.
type Node struct {
	Type      string `mapstructure:"type"`
	ID        string `mapstructure:"id"`
	Title     string `mapstructure:"title"`
	Body      string `mapstructure:"body"`
	URL       string `mapstructure:"url"`
	Synthetic bool   `mapstructure:"synthetic"`
	Children  []Node `mapstructure:"children"`
	Story     *Story `mapstructure:"story"`
}

// File is a parsed fixture.
type File struct {
	State    string            `mapstructure:"state"`
	Root     []Node            `mapstructure:"root"`
	Pages    map[string][]Node `mapstructure:"pages"`
	Failures map[string]int    `mapstructure:"failures"`
	Refresh  []Node            `mapstructure:"refresh"`
}

// Load reads a fixture file. JSON is detected by extension; anything else is YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a fixture in the given format ("yaml" or "json").
func Parse(data []byte, format string) (*File, error) {
	var raw map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse fixture json: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", format)
	}

	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	switch f.State {
	case "", "ready", "initializing", "invalidated":
	default:
		return fmt.Errorf("invalid fixture state %q", f.State)
	}
	check := func(where string, nodes []Node) error {
		for i := range nodes {
			if _, err := nodes[i].Build(); err != nil {
				return fmt.Errorf("%s[%d]: %w", where, i, err)
			}
		}
		return nil
	}
	if err := check("root", f.Root); err != nil {
		return err
	}
	for token, page := range f.Pages {
		if err := check("pages."+token, page); err != nil {
			return err
		}
	}
	return check("refresh", f.Refresh)
}

// Build converts the node into a model child.
func (n Node) Build() (domain.Child, error) {
	if n.Story != nil {
		return n.Story.build()
	}
	if n.ID == "" {
		return domain.Child{}, fmt.Errorf("%s node missing id", n.Type)
	}
	key := domain.ChildKey(n.ID)

	switch n.Type {
	case "token":
		return memory.TokenChild(key, n.Synthetic), nil
	case "unbound":
		return domain.UnboundChild(key), nil
	case "content":
		content := memory.NewContent(key, n.Title, n.Body).
			WithPayload(domain.Content{Title: n.Title, Body: n.Body, URL: n.URL})
		return domain.FeatureChild(content), nil
	case "card", "cluster":
		children, err := buildAll(n.Children)
		if err != nil {
			return domain.Child{}, fmt.Errorf("%s %q: %w", n.Type, n.ID, err)
		}
		return domain.FeatureChild(memory.NewFeature(key, domain.ParseFeatureKind(n.Type), children...)), nil
	default:
		return domain.Child{}, fmt.Errorf("unknown node type %q for %q", n.Type, n.ID)
	}
}

func (s *Story) build() (domain.Child, error) {
	if s.ID == "" {
		return domain.Child{}, fmt.Errorf("story missing id")
	}
	key := domain.ChildKey(s.ID)
	content := memory.NewContent(key+"/content", s.Title, s.Body).
		WithPayload(domain.Content{Title: s.Title, Body: s.Body, URL: s.URL})
	if s.Card {
		return domain.FeatureChild(memory.NewCard(key, content)), nil
	}
	return domain.FeatureChild(memory.NewCluster(key, memory.NewCard(key+"/card", content))), nil
}

func buildAll(nodes []Node) ([]domain.Child, error) {
	children := make([]domain.Child, 0, len(nodes))
	for i := range nodes {
		child, err := nodes[i].Build()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Apply scripts the model with the fixture. A fixture in the initializing
// state leaves the model without a root.
func (f *File) Apply(m *memory.Model) error {
	root, err := buildAll(f.Root)
	if err != nil {
		return err
	}
	for token, nodes := range f.Pages {
		page, err := buildAll(nodes)
		if err != nil {
			return err
		}
		m.AddPage(domain.ChildKey(token), page...)
	}
	for token, n := range f.Failures {
		m.FailNext(domain.ChildKey(token), n)
	}
	if f.Refresh != nil {
		refresh, err := buildAll(f.Refresh)
		if err != nil {
			return err
		}
		m.SetRefresh(refresh...)
	}

	switch state := domain.ParseModelState(f.State); state {
	case domain.ModelInitializing, domain.ModelInvalidated:
		m.SetState(state)
	default:
		m.SetRoot(memory.NewRoot(RootKey, root...))
	}
	return nil
}
