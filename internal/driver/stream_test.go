package driver_test

import (
	"errors"
	"testing"

	"github.com/aretw0/feedstream/internal/driver"
	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/internal/testutils"
	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScrollRestorer struct {
	mock.Mock
}

func (m *MockScrollRestorer) MaybeRestoreScroll() {
	m.Called()
}

type MockDismissCallback struct {
	mock.Mock
}

func (m *MockDismissCallback) OnDismissCommitted() { m.Called() }
func (m *MockDismissCallback) OnDismissReverted()  { m.Called() }

type harness struct {
	model    *memory.Model
	queue    *mainloop.Queue
	stream   *driver.StreamDriver
	listener *testutils.Listener
	snackbar *testutils.Snackbar
	diag     *testutils.Diagnostics
	scroll   *MockScrollRestorer
}

func newHarness(t *testing.T, root *memory.Node, opts ...driver.Option) *harness {
	t.Helper()
	h := &harness{
		queue:    mainloop.NewQueue(),
		listener: &testutils.Listener{},
		snackbar: &testutils.Snackbar{},
		diag:     &testutils.Diagnostics{},
		scroll:   new(MockScrollRestorer),
	}
	h.model = memory.NewModel(memory.WithMainThread(h.queue))
	if root != nil {
		h.model.SetRoot(root)
	}
	base := []driver.Option{
		driver.WithListener(h.listener),
		driver.WithSnackbar(h.snackbar),
		driver.WithDiagnostics(h.diag),
		driver.WithScrollRestorer(h.scroll),
		driver.WithMainThread(h.queue),
	}
	h.stream = driver.NewStreamDriver(h.model, append(base, opts...)...)
	t.Cleanup(h.stream.OnDestroy)
	return h
}

// leaves flattens and seeds the listener mirror.
func (h *harness) leaves() []ports.Leaf {
	leaves := h.stream.LeafFeatureDrivers()
	if h.listener.Mirror == nil && len(h.listener.Events) == 0 {
		h.listener.Seed(leaves)
	}
	return leaves
}

func (h *harness) click(t *testing.T, key domain.ChildKey) {
	t.Helper()
	i, ok := h.stream.IndexOf(key)
	require.True(t, ok, "no leaf for %s", key)
	clickable, ok := h.stream.LeafFeatureDrivers()[i].(ports.Clickable)
	require.True(t, ok, "leaf %s is not clickable", key)
	clickable.OnClick()
}

func assertDesync(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a desync panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %v", r)
		assert.True(t, errors.Is(err, domain.ErrDriverDesync), "got %v", err)
	}()
	fn()
}

func TestStreamDriver_Flatten(t *testing.T) {
	root := memory.NewRoot("root",
		memory.Story("s1", "One"),
		memory.CardStory("c1", "Two"),
		memory.TokenChild("t1", false),
	)
	h := newHarness(t, root)

	leaves := h.leaves()
	assert.Equal(t, []domain.ChildKey{"s1/content", "c1/content", "t1"}, testutils.Keys(leaves))
	assert.Equal(t, []domain.LeafKind{domain.LeafContent, domain.LeafContent, domain.LeafContinuation}, testutils.Kinds(leaves))
	assert.Empty(t, h.diag.Errors)

	again := h.stream.LeafFeatureDrivers()
	require.Len(t, again, 3)
	assert.Same(t, &leaves[0], &again[0], "unchanged lists are returned as-is")
	assert.True(t, h.stream.HasContent())
	assert.False(t, h.stream.IsZeroStateBeingShown())
}

func TestStreamDriver_FlattenMalformed(t *testing.T) {
	tests := []struct {
		name   string
		child  domain.Child
		errors []domain.InternalError
	}{
		{
			name:   "unbound",
			child:  domain.UnboundChild("u1"),
			errors: []domain.InternalError{domain.TopLevelUnboundChild},
		},
		{
			name:   "top-level content",
			child:  domain.FeatureChild(memory.NewContent("x", "X", "")),
			errors: []domain.InternalError{domain.TopLevelInvalidFeatureType},
		},
		{
			name:   "empty cluster",
			child:  domain.FeatureChild(memory.NewFeature("x", domain.FeatureCluster)),
			errors: []domain.InternalError{domain.ClusterChildMissingFeature, domain.FailedToCreateLeaf},
		},
		{
			name:   "cluster of content",
			child:  domain.FeatureChild(memory.NewFeature("x", domain.FeatureCluster, domain.FeatureChild(memory.NewContent("y", "Y", "")))),
			errors: []domain.InternalError{domain.ClusterChildNotCard, domain.FailedToCreateLeaf},
		},
		{
			name:   "card of token",
			child:  domain.FeatureChild(memory.NewFeature("x", domain.FeatureCard, memory.TokenChild("t", false))),
			errors: []domain.InternalError{domain.CardChildMissingFeature, domain.FailedToCreateLeaf},
		},
		{
			name:   "cluster of two cards",
			child:  domain.FeatureChild(memory.NewFeature("x", domain.FeatureCluster, memory.CardStory("a", "A"), memory.CardStory("b", "B"))),
			errors: []domain.InternalError{domain.ClusterChildMissingFeature, domain.FailedToCreateLeaf},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, memory.NewRoot("root", tt.child, memory.Story("s1", "One")))

			leaves := h.leaves()
			assert.Equal(t, []domain.ChildKey{"s1/content"}, testutils.Keys(leaves), "malformed node is omitted")
			assert.Equal(t, tt.errors, h.diag.Errors)

			require.NoError(t, h.model.Remove("x", "u1"))
			h.queue.Drain()
			assert.Equal(t, []domain.ChildKey{"s1/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()), "removing a skipped child is tolerated")
		})
	}
}

func TestStreamDriver_NoRoot(t *testing.T) {
	t.Run("initializing shows a loading zero state", func(t *testing.T) {
		h := newHarness(t, nil)
		leaves := h.leaves()
		require.Len(t, leaves, 1)
		assert.Equal(t, domain.LeafZeroState, leaves[0].Kind())
		assert.True(t, leaves[0].State().SpinnerShown)
		assert.False(t, h.stream.IsZeroStateBeingShown(), "spinner means still loading")
		assert.Empty(t, h.diag.Errors)
	})

	t.Run("ready without root is an error", func(t *testing.T) {
		h := newHarness(t, nil)
		h.model.SetState(domain.ModelInvalidated)
		assert.Empty(t, h.leaves())
		assert.Equal(t, []domain.InternalError{domain.NoRootFeature}, h.diag.Errors)
	})
}

func TestStreamDriver_EmptyRootPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		opts []driver.Option
		want []domain.ChildKey
	}{
		{name: "steady state", want: []domain.ChildKey{domain.ZeroStateKey}},
		{name: "initial load", opts: []driver.Option{driver.WithInitialLoad(true)}, want: []domain.ChildKey{}},
		{name: "restoring", opts: []driver.Option{driver.WithRestoring(true)}, want: []domain.ChildKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, memory.NewRoot("root"), tt.opts...)
			assert.Equal(t, tt.want, testutils.Keys(h.leaves()))
		})
	}

	h := newHarness(t, memory.NewRoot("root"))
	h.leaves()
	assert.Equal(t, []domain.ZeroStateReason{domain.ZeroStateNoContent}, h.diag.ZeroStates)
	assert.True(t, h.stream.IsZeroStateBeingShown())
}

func TestStreamDriver_OnlyTokenShowsNoContent(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.TokenChild("t1", false)))
	assert.Equal(t, []domain.ChildKey{domain.NoContentKey, "t1"}, testutils.Keys(h.leaves()))
	assert.False(t, h.stream.HasContent())
}

func TestStreamDriver_TokenSplice(t *testing.T) {
	root := memory.NewRoot("root",
		memory.CardStory("c1", "Card"),
		memory.Story("s1", "Cluster"),
		memory.TokenChild("t1", false),
	)
	h := newHarness(t, root)
	h.model.AddPage("t1", memory.Story("s2", "Next"))
	h.scroll.On("MaybeRestoreScroll").Once()

	h.leaves()
	h.click(t, "t1")
	assert.True(t, h.stream.LeafFeatureDrivers()[2].State().SpinnerShown)
	h.queue.Drain()

	leaves := h.stream.LeafFeatureDrivers()
	assert.Equal(t, []domain.ChildKey{"c1/content", "s1/content", "s2/content"}, testutils.Keys(leaves))
	assert.Equal(t, []string{"removed(2)", "added(2,[s2/content])"}, h.listener.Ops())
	h.listener.AssertMirrors(t, leaves)

	h.scroll.AssertExpectations(t)
	assert.Equal(t, []testutils.TokenCompletion{{Synthetic: false, Contents: 1, Tokens: 0}}, h.diag.Completions)
	assert.Len(t, h.diag.SpinnersFinished, 1)
	assert.False(t, h.stream.SyntheticTokenConsumedDuringRestore())
	assert.Empty(t, h.snackbar.Calls)
}

func TestStreamDriver_TokenSpliceWithNextToken(t *testing.T) {
	root := memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false))
	h := newHarness(t, root)
	h.model.AddPage("t1", memory.Story("s2", "Two"), memory.TokenChild("t2", false))
	h.model.AddPage("t2", memory.Story("s3", "Three"))
	h.scroll.On("MaybeRestoreScroll")

	h.leaves()
	h.click(t, "t1")
	h.queue.Drain()
	assert.Equal(t, []domain.ChildKey{"s1/content", "s2/content", "t2"}, testutils.Keys(h.stream.LeafFeatureDrivers()))

	h.click(t, "t2")
	h.queue.Drain()
	leaves := h.stream.LeafFeatureDrivers()
	assert.Equal(t, []domain.ChildKey{"s1/content", "s2/content", "s3/content"}, testutils.Keys(leaves))
	h.listener.AssertMirrors(t, leaves)
}

func TestStreamDriver_EmptyPage(t *testing.T) {
	t.Run("content remains", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false)))
		h.scroll.On("MaybeRestoreScroll")
		h.leaves()
		h.click(t, "t1")
		h.queue.Drain()

		assert.Equal(t, []domain.ChildKey{"s1/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
		assert.Equal(t, []string{"No new suggestions"}, h.snackbar.Messages())
	})

	t.Run("nothing left", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.TokenChild("t1", false)))
		h.scroll.On("MaybeRestoreScroll")
		h.leaves()
		h.click(t, "t1")
		h.queue.Drain()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{domain.ZeroStateKey}, testutils.Keys(leaves))
		assert.Equal(t, []string{"removed(1)", "removed(0)", "added(0,[__zero_state__])"}, h.listener.Ops())
		h.listener.AssertMirrors(t, leaves)
		assert.Equal(t, []domain.ZeroStateReason{domain.ZeroStateNoContentFromContinuationToken}, h.diag.ZeroStates)
	})
}

func TestStreamDriver_SyntheticTokens(t *testing.T) {
	tests := []struct {
		name      string
		policy    domain.Policy
		restoring bool
		consumed  bool
	}{
		{name: "default policy consumes", policy: domain.DefaultPolicy(), consumed: true},
		{name: "default policy waits while restoring", policy: domain.DefaultPolicy(), restoring: true},
		{
			name:      "restore consumption enabled",
			policy:    domain.Policy{ConsumeSyntheticTokens: true, ConsumeSyntheticTokensWhileRestoring: true},
			restoring: true,
			consumed:  true,
		},
		{name: "consumption disabled", policy: domain.Policy{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", true))
			h := newHarness(t, root, driver.WithPolicy(tt.policy), driver.WithRestoring(tt.restoring))
			h.model.AddPage("t1", memory.Story("s2", "Two"))

			leaves := h.leaves()
			cont, ok := leaves[1].(*driver.ContinuationDriver)
			require.True(t, ok)

			if !tt.consumed {
				assert.Zero(t, h.queue.Pending(), "token must not reach the model")
				assert.True(t, cont.TokenState().IsPending())
				return
			}

			assert.True(t, cont.TokenState().Consumed())
			assert.Equal(t, 1, h.queue.Pending())
			h.queue.Drain()

			assert.Equal(t, []domain.ChildKey{"s1/content", "s2/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
			assert.Equal(t, tt.restoring, h.stream.SyntheticTokenConsumedDuringRestore())
			h.scroll.AssertNotCalled(t, "MaybeRestoreScroll")
			assert.Equal(t, []testutils.TokenCompletion{{Synthetic: true, Contents: 1}}, h.diag.Completions)
		})
	}
}

func TestStreamDriver_TriggerImmediatePagination(t *testing.T) {
	root := memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false))
	h := newHarness(t, root, driver.WithPolicy(domain.Policy{TriggerImmediatePagination: true}))
	h.model.AddPage("t1", memory.Story("s2", "Two"))
	h.scroll.On("MaybeRestoreScroll").Once()

	h.leaves()
	assert.Equal(t, 1, h.queue.Pending())
	assert.Equal(t, 1, h.diag.SpinnersStarted)
	h.queue.Drain()
	assert.Equal(t, []domain.ChildKey{"s1/content", "s2/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
}

func TestStreamDriver_TokenFailure(t *testing.T) {
	root := memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false))
	h := newHarness(t, root)
	h.model.AddPage("t1", memory.Story("s2", "Two"))
	h.model.FailNext("t1", 1)
	h.scroll.On("MaybeRestoreScroll")

	leaves := h.leaves()
	cont := leaves[1].(*driver.ContinuationDriver)
	h.click(t, "t1")
	h.queue.Drain()

	assert.False(t, cont.IsSpinnerShowing())
	assert.True(t, cont.TokenState().IsPending())
	assert.Equal(t, 1, cont.Failures())
	assert.Equal(t, []int{1}, h.diag.Failures)
	assert.Equal(t, 1, h.diag.SpinnersStarted)
	assert.Len(t, h.diag.SpinnersFinished, 1, "a failed load still ends its spinner")
	assert.Equal(t, []string{"Couldn't load more content. Tap to try again."}, h.snackbar.Messages())
	assert.Zero(t, h.queue.Pending(), "failures are not retried silently")
	assert.Equal(t, []domain.ChildKey{"s1/content", "t1"}, testutils.Keys(h.stream.LeafFeatureDrivers()))

	h.click(t, "t1")
	h.queue.Drain()
	assert.Equal(t, []domain.ChildKey{"s1/content", "s2/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
}

func TestStreamDriver_UnhandledToken(t *testing.T) {
	root := memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false))
	h := newHarness(t, root)
	leaves := h.leaves()
	cont := leaves[1].(*driver.ContinuationDriver)

	h.model.SetState(domain.ModelInvalidated)
	h.click(t, "t1")

	assert.Equal(t, []domain.InternalError{domain.UnhandledToken}, h.diag.Errors)
	assert.False(t, cont.IsSpinnerShowing())
	assert.Equal(t, 1, h.diag.SpinnersStarted)
	assert.Len(t, h.diag.SpinnersFinished, 1, "a rejected activation ends its spinner")
	assert.True(t, cont.TokenState().IsPending())
}

func TestStreamDriver_OnChange(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.Story("s2", "Two")))
	h.leaves()

	require.NoError(t, h.model.Append(memory.Story("s3", "Three")))
	require.NoError(t, h.model.Remove("s1"))
	h.queue.Drain()

	leaves := h.stream.LeafFeatureDrivers()
	assert.Equal(t, []domain.ChildKey{"s2/content", "s3/content"}, testutils.Keys(leaves))
	assert.Equal(t, []string{"added(2,[s3/content])", "removed(0)"}, h.listener.Ops())
	h.listener.AssertMirrors(t, leaves)
}

func TestStreamDriver_OnChangeRemovesBeforeAdding(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One")))
	h.leaves()

	h.stream.OnChange(domain.FeatureChange{
		Key:      "root",
		Removed:  []domain.Child{memory.Story("s1", "One")},
		Appended: []domain.Child{memory.Story("s2", "Two")},
	})

	assert.Equal(t, []string{"removed(0)", "added(0,[s2/content])"}, h.listener.Ops())
	assert.Empty(t, h.diag.ZeroStates, "no placeholder flashes between removal and addition")
}

func TestStreamDriver_RemovingAllContent(t *testing.T) {
	t.Run("with a token left", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false)))
		h.leaves()
		require.NoError(t, h.model.Remove("s1"))
		h.queue.Drain()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{domain.NoContentKey, "t1"}, testutils.Keys(leaves))
		h.listener.AssertMirrors(t, leaves)
	})

	t.Run("without a token", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One")), driver.WithInitialLoad(true))
		h.leaves()
		require.NoError(t, h.model.Remove("s1"))
		h.queue.Drain()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{domain.ZeroStateKey}, testutils.Keys(leaves), "initial load only exempts the first flatten")
		assert.Equal(t, []domain.ZeroStateReason{domain.ZeroStateNoContent}, h.diag.ZeroStates)
	})

	t.Run("content arrives after the zero state", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root"))
		h.leaves()
		require.NoError(t, h.model.Append(memory.Story("s1", "One")))
		h.queue.Drain()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{"s1/content"}, testutils.Keys(leaves))
		assert.Equal(t, []string{"removed(0)", "added(0,[s1/content])"}, h.listener.Ops())
	})
}

func TestStreamDriver_Desync(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false)))
	h.leaves()

	assertDesync(t, func() {
		h.stream.OnChange(domain.FeatureChange{Key: "root", Removed: []domain.Child{memory.Story("ghost", "")}})
	})
	assertDesync(t, func() {
		h.stream.OnNewChildren("ghost", nil, false)
	})
	assertDesync(t, func() {
		h.stream.OnNewChildren("s1", nil, false)
	})
}

func TestStreamDriver_ShowZeroStateAndRefresh(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One")))
	h.leaves()

	h.stream.ShowZeroState(domain.ZeroStateError)
	assert.Equal(t, []string{"cleared", "added(0,[__zero_state__])"}, h.listener.Ops())
	assert.True(t, h.stream.IsZeroStateBeingShown())
	assert.Equal(t, []domain.ZeroStateReason{domain.ZeroStateError}, h.diag.ZeroStates)

	t.Run("refresh with nothing new", func(t *testing.T) {
		h.click(t, domain.ZeroStateKey)
		assert.False(t, h.stream.IsZeroStateBeingShown(), "spinner showing")
		h.queue.Drain()

		assert.True(t, h.stream.IsZeroStateBeingShown(), "spinner reset after an empty refresh")
		assert.Equal(t, []testutils.TokenCompletion{{}}, h.diag.Refreshes)
	})

	t.Run("refresh with content", func(t *testing.T) {
		h.model.SetRefresh(memory.Story("s2", "Two"))
		h.listener.Reset()
		h.click(t, domain.ZeroStateKey)
		h.queue.Drain()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{"s2/content"}, testutils.Keys(leaves))
		assert.Equal(t, []string{"removed(0)", "added(0,[s2/content])"}, h.listener.Ops())
		h.listener.AssertMirrors(t, leaves)
		assert.Equal(t, testutils.TokenCompletion{Contents: 1}, h.diag.Refreshes[1])
		assert.False(t, h.stream.IsZeroStateBeingShown())
	})
}

func TestStreamDriver_Dismiss(t *testing.T) {
	undo := domain.UndoAction{ConfirmationLabel: "Story removed"}

	newDismissHarness := func(t *testing.T) *harness {
		h := newHarness(t, memory.NewRoot("root",
			memory.CardStory("c1", "One"),
			memory.CardStory("c2", "Two"),
			memory.TokenChild("t1", false),
		))
		h.leaves()
		return h
	}

	t.Run("undo splices back", func(t *testing.T) {
		h := newDismissHarness(t)
		cb := new(MockDismissCallback)
		cb.On("OnDismissReverted").Once()

		h.stream.TriggerPendingDismiss("c2/content", undo, cb)
		assert.Equal(t, []domain.ChildKey{"c1/content", "t1"}, testutils.Keys(h.stream.LeafFeatureDrivers()))

		call := h.snackbar.Last()
		assert.Equal(t, "Story removed", call.Message)
		assert.Equal(t, "Undo", call.Action)
		call.Callback.OnDismissedWithAction()

		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{"c1/content", "c2/content", "t1"}, testutils.Keys(leaves))
		assert.Equal(t, []string{"removed(1)", "added(1,[c2/content])"}, h.listener.Ops())
		h.listener.AssertMirrors(t, leaves)
		cb.AssertExpectations(t)
	})

	t.Run("no action commits", func(t *testing.T) {
		h := newDismissHarness(t)
		cb := new(MockDismissCallback)
		cb.On("OnDismissCommitted").Once()

		h.stream.TriggerPendingDismiss("c1", undo, cb)
		h.snackbar.Last().Callback.OnDismissNoAction()
		h.snackbar.Last().Callback.OnDismissedWithAction()

		assert.Equal(t, []domain.ChildKey{"c2/content", "t1"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
		cb.AssertExpectations(t)

		require.NoError(t, h.model.Remove("c1"))
		h.queue.Drain()
		assert.Equal(t, []domain.ChildKey{"c2/content", "t1"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
	})

	t.Run("last content with a token", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.CardStory("c1", "One"), memory.TokenChild("t1", false)))
		h.leaves()
		cb := new(MockDismissCallback)
		cb.On("OnDismissReverted").Once()

		h.stream.TriggerPendingDismiss("c1", undo, cb)
		assert.Equal(t, []domain.ChildKey{domain.NoContentKey, "t1"}, testutils.Keys(h.stream.LeafFeatureDrivers()))

		h.snackbar.Last().Callback.OnDismissedWithAction()
		leaves := h.stream.LeafFeatureDrivers()
		assert.Equal(t, []domain.ChildKey{"c1/content", "t1"}, testutils.Keys(leaves))
		assert.Equal(t, []string{"removed(0)", "added(0,[__no_content__])", "cleared", "added(0,[c1/content t1])"}, h.listener.Ops())
		h.listener.AssertMirrors(t, leaves)
	})

	t.Run("last content", func(t *testing.T) {
		h := newHarness(t, memory.NewRoot("root", memory.CardStory("c1", "One")))
		h.leaves()

		h.stream.TriggerPendingDismiss("c1", undo, nil)
		assert.True(t, h.stream.IsZeroStateBeingShown())
		assert.Equal(t, []domain.ZeroStateReason{domain.ZeroStateContentDismissed}, h.diag.ZeroStates)

		h.snackbar.Last().Callback.OnDismissedWithAction()
		assert.Equal(t, []domain.ChildKey{"c1/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))
	})

	t.Run("undoing overlapping dismisses keeps model order", func(t *testing.T) {
		orders := map[string][]domain.ChildKey{
			"in dismiss order": {"c1", "c2"},
			"in reverse order": {"c2", "c1"},
		}
		for name, undoOrder := range orders {
			t.Run(name, func(t *testing.T) {
				h := newHarness(t, memory.NewRoot("root",
					memory.CardStory("c1", "One"),
					memory.CardStory("c2", "Two"),
					memory.CardStory("c3", "Three"),
				))
				h.leaves()

				h.stream.TriggerPendingDismiss("c1", undo, nil)
				first := h.snackbar.Last().Callback
				h.stream.TriggerPendingDismiss("c2", undo, nil)
				second := h.snackbar.Last().Callback
				assert.Equal(t, []domain.ChildKey{"c3/content"}, testutils.Keys(h.stream.LeafFeatureDrivers()))

				callbacks := map[domain.ChildKey]ports.SnackbarCallback{"c1": first, "c2": second}
				for _, key := range undoOrder {
					callbacks[key].OnDismissedWithAction()
				}

				leaves := h.stream.LeafFeatureDrivers()
				assert.Equal(t, []domain.ChildKey{"c1/content", "c2/content", "c3/content"}, testutils.Keys(leaves))
				h.listener.AssertMirrors(t, leaves)
			})
		}
	})

	t.Run("non-content is ignored", func(t *testing.T) {
		h := newDismissHarness(t)
		h.stream.TriggerPendingDismiss("t1", undo, nil)
		h.stream.TriggerPendingDismiss("missing", undo, nil)
		assert.Empty(t, h.listener.Events)
		assert.Empty(t, h.snackbar.Calls)
	})
}

func TestStreamDriver_Snapshot(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false)))
	h.leaves()
	snap := h.stream.Snapshot("session-1")
	assert.Equal(t, "session-1", snap.SessionID)
	assert.Equal(t, []domain.ChildKey{"s1", "t1"}, snap.Keys)
}

func TestStreamDriver_OnDestroy(t *testing.T) {
	h := newHarness(t, memory.NewRoot("root", memory.Story("s1", "One"), memory.TokenChild("t1", false)))
	leaves := h.leaves()
	cont := leaves[1].(*driver.ContinuationDriver)
	h.click(t, "t1")

	features, tokens := h.model.ObserverCount()
	assert.Equal(t, 1, features)
	assert.Equal(t, 1, tokens)

	h.stream.OnDestroy()
	assert.Len(t, h.diag.SpinnersAbandoned, 1)
	features, tokens = h.model.ObserverCount()
	assert.Zero(t, features)
	assert.Zero(t, tokens)
	assert.Empty(t, h.stream.LeafFeatureDrivers())

	h.queue.Post(func() {
		cont.OnTokenCompleted(domain.TokenCompletedEvent{Token: memory.NewToken("t1", false)})
		cont.OnError(errors.New("late"))
	})
	assert.NotPanics(t, func() { h.queue.Drain() })
	assert.Empty(t, h.listener.Events)
}
