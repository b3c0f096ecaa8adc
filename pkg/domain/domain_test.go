package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type token struct {
	key       domain.ChildKey
	synthetic bool
}

func (t token) Key() domain.ChildKey { return t.key }
func (t token) Synthetic() bool      { return t.synthetic }

func TestCursor_CopiesChildren(t *testing.T) {
	children := []domain.Child{
		domain.TokenChild(token{key: "t1"}),
		domain.UnboundChild("u1"),
	}
	cursor := domain.NewCursor(children...)
	children[0] = domain.UnboundChild("changed")

	first, ok := cursor.Next()
	assert.True(t, ok)
	assert.Equal(t, domain.ChildKey("t1"), first.Key())
	second, ok := cursor.Next()
	assert.True(t, ok)
	assert.Equal(t, domain.ChildUnbound, second.Kind())

	_, ok = cursor.Next()
	assert.False(t, ok, "cursor is single pass")
	_, ok = cursor.Next()
	assert.False(t, ok)
}

func TestChild_Accessors(t *testing.T) {
	c := domain.TokenChild(token{key: "t1", synthetic: true})
	tok, ok := c.Token()
	assert.True(t, ok)
	assert.True(t, tok.Synthetic())
	_, ok = c.Feature()
	assert.False(t, ok)

	var zero domain.Child
	assert.Equal(t, domain.ChildUnbound, zero.Kind())
	assert.Equal(t, "unbound", zero.Kind().String())
	_, ok = zero.Token()
	assert.False(t, ok)
}

func TestCountChildren(t *testing.T) {
	features, tokens := domain.CountChildren([]domain.Child{
		domain.TokenChild(token{key: "t1"}),
		domain.UnboundChild("u1"),
		domain.TokenChild(token{key: "t2"}),
	})
	assert.Equal(t, 0, features)
	assert.Equal(t, 2, tokens)

	features, tokens = domain.CountChildren(nil)
	assert.Zero(t, features)
	assert.Zero(t, tokens)
}

func TestTokenState(t *testing.T) {
	tests := []struct {
		state    domain.TokenState
		pending  bool
		consumed bool
		str      string
	}{
		{domain.TokenState{}, true, false, "pending"},
		{domain.TokenState{Phase: domain.TokenHandled}, false, false, "handled"},
		{domain.TokenState{Synthetic: true}, true, false, "synthetic(consumed=false)"},
		{domain.TokenState{Phase: domain.TokenHandled, Synthetic: true}, false, true, "synthetic(consumed=true)"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.pending, tt.state.IsPending())
			assert.Equal(t, tt.consumed, tt.state.Consumed())
			assert.Equal(t, tt.str, tt.state.String())
		})
	}
}

func TestParseKinds(t *testing.T) {
	for _, k := range []domain.FeatureKind{domain.FeatureCluster, domain.FeatureCard, domain.FeatureContent} {
		assert.Equal(t, k, domain.ParseFeatureKind(k.String()))
	}
	assert.Equal(t, domain.FeatureUnknown, domain.ParseFeatureKind("carousel"))

	for _, s := range []domain.ModelState{domain.ModelInitializing, domain.ModelReady, domain.ModelInvalidated} {
		assert.Equal(t, s, domain.ParseModelState(s.String()))
	}
	assert.Equal(t, domain.ModelReady, domain.ParseModelState(""))
}

func TestInternalErrorNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, kind := range domain.InternalErrors() {
		name := kind.String()
		assert.NotEqual(t, "UNKNOWN_INTERNAL_ERROR", name)
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, 9)
	assert.Equal(t, "NO_ROOT_FEATURE", domain.NoRootFeature.String())
	assert.Equal(t, "UNKNOWN_INTERNAL_ERROR", domain.InternalError(0).String())
}

func TestDefaultPolicy(t *testing.T) {
	p := domain.DefaultPolicy()
	assert.True(t, p.ConsumeSyntheticTokens)
	assert.False(t, p.ConsumeSyntheticTokensWhileRestoring)
	assert.False(t, p.TriggerImmediatePagination)
}

func TestSnapshot_AnchorKey(t *testing.T) {
	snap := domain.NewSnapshot("s", []domain.ChildKey{"a", "b"})
	assert.False(t, snap.SavedAt.IsZero())

	key, ok := snap.AnchorKey()
	assert.True(t, ok)
	assert.Equal(t, domain.ChildKey("a"), key)

	snap.Anchor = 1
	key, _ = snap.AnchorKey()
	assert.Equal(t, domain.ChildKey("b"), key)

	snap.Anchor = 2
	_, ok = snap.AnchorKey()
	assert.False(t, ok)

	var nilSnap *domain.Snapshot
	_, ok = nilSnap.AnchorKey()
	assert.False(t, ok)
}

func TestLeafKind_JSON(t *testing.T) {
	data, err := json.Marshal(domain.ViewState{Kind: domain.LeafZeroState, Key: domain.ZeroStateKey})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"zero_state","key":"__zero_state__"}`, string(data))

	var v domain.ViewState
	assert.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, domain.LeafZeroState, v.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"banner"}`), &v))
}
