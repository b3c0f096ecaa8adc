package domain

// FeatureKind is the discriminant of a Feature.
type FeatureKind uint8

const (
	FeatureUnknown FeatureKind = iota
	FeatureCluster
	FeatureCard
	FeatureContent
)

func (k FeatureKind) String() string {
	switch k {
	case FeatureCluster:
		return "cluster"
	case FeatureCard:
		return "card"
	case FeatureContent:
		return "content"
	default:
		return "unknown"
	}
}

// ParseFeatureKind maps a fixture or wire name to a FeatureKind.
func ParseFeatureKind(s string) FeatureKind {
	switch s {
	case "cluster":
		return FeatureCluster
	case "card":
		return FeatureCard
	case "content":
		return FeatureContent
	default:
		return FeatureUnknown
	}
}

// Feature is a handle to a node of the content tree.
type Feature interface {
	Key() ChildKey
	Kind() FeatureKind
	// Cursor returns a fresh single-pass cursor over the feature's children.
	Cursor() Cursor
	// Content returns the terminal payload of a FeatureContent, nil otherwise.
	Content() *Content
}

// Token is an unexpanded pagination marker.
type Token interface {
	Key() ChildKey
	// Synthetic tokens can be resolved without a network round trip.
	Synthetic() bool
}

// Cursor iterates a feature's children once. It is not restartable.
type Cursor interface {
	Next() (Child, bool)
}

// Content is the payload rendered by a content leaf.
type Content struct {
	ID    ChildKey `json:"id" yaml:"id"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Body  string   `json:"body,omitempty" yaml:"body,omitempty"`
	URL   string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// SliceCursor is a Cursor over a snapshot of children.
type SliceCursor struct {
	children []Child
	pos      int
}

// NewCursor copies children so later mutations of the source slice are not observed.
func NewCursor(children ...Child) *SliceCursor {
	snapshot := make([]Child, len(children))
	copy(snapshot, children)
	return &SliceCursor{children: snapshot}
}

func (c *SliceCursor) Next() (Child, bool) {
	if c.pos >= len(c.children) {
		return Child{}, false
	}
	child := c.children[c.pos]
	c.pos++
	return child, true
}
