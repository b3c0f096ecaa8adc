package memory

import (
	"slices"
	"sync"

	"github.com/aretw0/feedstream/pkg/domain"
)

// Node is a mutable in-memory feature.
type Node struct {
	mu       sync.RWMutex
	key      domain.ChildKey
	kind     domain.FeatureKind
	content  *domain.Content
	children []domain.Child
}

// NewFeature creates a feature of any kind. It is mostly useful to build
// malformed trees.
func NewFeature(key domain.ChildKey, kind domain.FeatureKind, children ...domain.Child) *Node {
	return &Node{key: key, kind: kind, children: children}
}

// NewRoot creates the root feature. Its kind is irrelevant to the engine.
func NewRoot(key domain.ChildKey, children ...domain.Child) *Node {
	return NewFeature(key, domain.FeatureUnknown, children...)
}

// NewContent creates a terminal content feature.
func NewContent(key domain.ChildKey, title, body string) *Node {
	return &Node{
		key:     key,
		kind:    domain.FeatureContent,
		content: &domain.Content{ID: key, Title: title, Body: body},
	}
}

// NewCard wraps a single content feature.
func NewCard(key domain.ChildKey, content *Node) *Node {
	return NewFeature(key, domain.FeatureCard, domain.FeatureChild(content))
}

// NewCluster wraps a single card.
func NewCluster(key domain.ChildKey, card *Node) *Node {
	return NewFeature(key, domain.FeatureCluster, domain.FeatureChild(card))
}

// Story builds the common cluster > card > content chain as a top-level child.
func Story(key domain.ChildKey, title string) domain.Child {
	content := NewContent(key+"/content", title, "")
	return domain.FeatureChild(NewCluster(key, NewCard(key+"/card", content)))
}

// CardStory builds a card > content chain as a top-level child.
func CardStory(key domain.ChildKey, title string) domain.Child {
	return domain.FeatureChild(NewCard(key, NewContent(key+"/content", title, "")))
}

// WithPayload replaces the content payload. The ID is kept.
func (n *Node) WithPayload(c domain.Content) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	c.ID = n.key
	n.content = &c
	return n
}

func (n *Node) Key() domain.ChildKey      { return n.key }
func (n *Node) Kind() domain.FeatureKind { return n.kind }
func (n *Node) Content() *domain.Content {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.content == nil {
		return nil
	}
	c := *n.content
	return &c
}

func (n *Node) Cursor() domain.Cursor {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return domain.NewCursor(n.children...)
}

// Children returns a copy of the current children.
func (n *Node) Children() []domain.Child {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

func (n *Node) append(children ...domain.Child) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, children...)
}

// remove drops the children with the given keys and returns them.
func (n *Node) remove(keys ...domain.ChildKey) []domain.Child {
	n.mu.Lock()
	defer n.mu.Unlock()
	var removed []domain.Child
	n.children = slices.DeleteFunc(n.children, func(c domain.Child) bool {
		if slices.Contains(keys, c.Key()) {
			removed = append(removed, c)
			return true
		}
		return false
	})
	return removed
}

// splice replaces the child with key by children. It reports false when key
// is not a child.
func (n *Node) splice(key domain.ChildKey, children []domain.Child) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := slices.IndexFunc(n.children, func(c domain.Child) bool { return c.Key() == key })
	if i < 0 {
		return false
	}
	n.children = slices.Replace(n.children, i, i+1, children...)
	return true
}

func (n *Node) replace(children []domain.Child) []domain.Child {
	n.mu.Lock()
	defer n.mu.Unlock()
	old := n.children
	n.children = slices.Clone(children)
	return old
}

// TokenNode is an in-memory pagination token.
type TokenNode struct {
	key       domain.ChildKey
	synthetic bool
}

// NewToken creates a pagination token.
func NewToken(key domain.ChildKey, synthetic bool) *TokenNode {
	return &TokenNode{key: key, synthetic: synthetic}
}

// TokenChild is a shorthand for domain.TokenChild(NewToken(key, synthetic)).
func TokenChild(key domain.ChildKey, synthetic bool) domain.Child {
	return domain.TokenChild(NewToken(key, synthetic))
}

func (t *TokenNode) Key() domain.ChildKey { return t.key }
func (t *TokenNode) Synthetic() bool      { return t.synthetic }
