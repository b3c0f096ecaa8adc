package domain

// ChildKey identifies a child of the content tree.
// Keys are unique within a session and stable for its lifetime; the engine
// uses them as the identity of a child when splicing the flattened list.
type ChildKey string

// Keys reserved for placeholder leaves. They never collide with model keys.
const (
	ZeroStateKey ChildKey = "__zero_state__"
	NoContentKey ChildKey = "__no_content__"
)

// ChildKind discriminates the Child variants.
type ChildKind uint8

const (
	ChildUnbound ChildKind = iota
	ChildFeature
	ChildToken
)

func (k ChildKind) String() string {
	switch k {
	case ChildFeature:
		return "feature"
	case ChildToken:
		return "token"
	default:
		return "unbound"
	}
}

// Child is a tagged variant yielded by a Cursor.
// The zero value is an Unbound child without a key.
type Child struct {
	kind    ChildKind
	key     ChildKey
	feature Feature
	token   Token
}

// FeatureChild wraps a feature.
func FeatureChild(f Feature) Child {
	return Child{kind: ChildFeature, key: f.Key(), feature: f}
}

// TokenChild wraps a pagination token.
func TokenChild(t Token) Child {
	return Child{kind: ChildToken, key: t.Key(), token: t}
}

// UnboundChild represents a child the model could not bind to a feature.
func UnboundChild(key ChildKey) Child {
	return Child{kind: ChildUnbound, key: key}
}

func (c Child) Kind() ChildKind { return c.kind }
func (c Child) Key() ChildKey   { return c.key }

// Feature returns the wrapped feature when the child is a ChildFeature.
func (c Child) Feature() (Feature, bool) {
	return c.feature, c.kind == ChildFeature && c.feature != nil
}

// Token returns the wrapped token when the child is a ChildToken.
func (c Child) Token() (Token, bool) {
	return c.token, c.kind == ChildToken && c.token != nil
}

// CountChildren splits children into content-bearing features and tokens.
// Unbound children are counted in neither.
func CountChildren(children []Child) (features, tokens int) {
	for _, c := range children {
		switch c.kind {
		case ChildFeature:
			features++
		case ChildToken:
			tokens++
		}
	}
	return features, tokens
}
