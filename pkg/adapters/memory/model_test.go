package memory_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenObserver struct {
	mock.Mock
}

func (m *MockTokenObserver) OnTokenCompleted(event domain.TokenCompletedEvent) {
	m.Called(event)
}

func (m *MockTokenObserver) OnError(err error) {
	m.Called(err)
}

type changeRecorder struct {
	changes []domain.FeatureChange
}

func (r *changeRecorder) OnChange(change domain.FeatureChange) {
	r.changes = append(r.changes, change)
}

func TestModel_InitializingUntilRoot(t *testing.T) {
	m := memory.NewModel()
	assert.Equal(t, domain.ModelInitializing, m.State())
	_, ok := m.Root()
	assert.False(t, ok)

	assert.False(t, m.HandleToken(memory.NewToken("t1", false)), "not ready models refuse tokens")

	m.SetRoot(memory.NewRoot("root"))
	assert.Equal(t, domain.ModelReady, m.State())
	root, ok := m.Root()
	require.True(t, ok)
	assert.Equal(t, domain.ChildKey("root"), root.Key())
}

func TestModel_HandleToken(t *testing.T) {
	queue := mainloop.NewQueue()
	m := memory.NewModel(memory.WithMainThread(queue))
	token := memory.NewToken("t1", false)
	m.SetRoot(memory.NewRoot("root", memory.Story("s1", "One"), domain.TokenChild(token)))
	page := []domain.Child{memory.Story("s2", "Two"), memory.TokenChild("t2", false)}
	m.AddPage("t1", page...)

	obs := new(MockTokenObserver)
	obs.On("OnTokenCompleted", mock.MatchedBy(func(e domain.TokenCompletedEvent) bool {
		return e.Token.Key() == "t1" && len(e.Children) == 2
	})).Once()
	m.RegisterTokenObserver(token, obs)

	require.True(t, m.HandleToken(token))
	assert.False(t, m.HandleToken(token), "in-flight tokens are refused")

	assert.Equal(t, 1, queue.Drain())
	obs.AssertExpectations(t)

	root, _ := m.Root()
	var keys []domain.ChildKey
	cursor := root.Cursor()
	for c, ok := cursor.Next(); ok; c, ok = cursor.Next() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []domain.ChildKey{"s1", "s2", "t2"}, keys, "page replaces the token in the root")
}

func TestModel_FailNext(t *testing.T) {
	queue := mainloop.NewQueue()
	m := memory.NewModel(memory.WithMainThread(queue))
	token := memory.NewToken("t1", false)
	m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))
	m.FailNext("t1", 1)

	obs := new(MockTokenObserver)
	obs.On("OnError", mock.MatchedBy(func(err error) bool {
		return assert.ErrorIs(t, err, memory.ErrPageUnavailable)
	})).Once()
	obs.On("OnTokenCompleted", mock.Anything).Once()
	m.RegisterTokenObserver(token, obs)

	require.True(t, m.HandleToken(token))
	queue.Drain()
	require.True(t, m.HandleToken(token), "a failed token can be retried")
	queue.Drain()

	obs.AssertExpectations(t)
}

func TestModel_UnregisterTokenObserver(t *testing.T) {
	queue := mainloop.NewQueue()
	m := memory.NewModel(memory.WithMainThread(queue))
	token := memory.NewToken("t1", true)
	m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))

	obs := new(MockTokenObserver)
	m.RegisterTokenObserver(token, obs)
	_, tokens := m.ObserverCount()
	assert.Equal(t, 1, tokens)

	m.UnregisterTokenObserver(token, obs)
	require.True(t, m.HandleToken(token))
	queue.Drain()

	obs.AssertNotCalled(t, "OnTokenCompleted", mock.Anything)
	_, tokens = m.ObserverCount()
	assert.Zero(t, tokens)
}

func TestModel_AppendRemove(t *testing.T) {
	queue := mainloop.NewQueue()
	m := memory.NewModel(memory.WithMainThread(queue))
	require.Error(t, m.Append(memory.Story("s1", "One")), "no root yet")

	m.SetRoot(memory.NewRoot("root"))
	rec := &changeRecorder{}
	m.RegisterObserver("root", rec)

	require.NoError(t, m.Append(memory.Story("s1", "One"), memory.Story("s2", "Two")))
	require.NoError(t, m.Remove("s1"))
	assert.Error(t, m.Remove("missing"))
	queue.Drain()

	require.Len(t, rec.changes, 2)
	assert.Len(t, rec.changes[0].Appended, 2)
	require.Len(t, rec.changes[1].Removed, 1)
	assert.Equal(t, domain.ChildKey("s1"), rec.changes[1].Removed[0].Key())
}

func TestModel_TriggerRefresh(t *testing.T) {
	queue := mainloop.NewQueue()
	m := memory.NewModel(memory.WithMainThread(queue))
	m.SetRoot(memory.NewRoot("root", memory.Story("old", "Old")))
	rec := &changeRecorder{}
	m.RegisterObserver("root", rec)

	m.TriggerRefresh(domain.RefreshManual)
	queue.Drain()
	require.Len(t, rec.changes, 1)
	assert.True(t, rec.changes[0].IsEmpty(), "nothing scripted yields an empty change")

	m.SetRefresh(memory.Story("new", "New"))
	m.TriggerRefresh(domain.RefreshZeroState)
	queue.Drain()
	require.Len(t, rec.changes, 2)
	assert.Equal(t, domain.ChildKey("old"), rec.changes[1].Removed[0].Key())
	assert.Equal(t, domain.ChildKey("new"), rec.changes[1].Appended[0].Key())
}

func TestModel_Latency(t *testing.T) {
	loop := mainloop.New()
	ctx := t.Context()
	go loop.Run(ctx)

	m := memory.NewModel(memory.WithMainThread(loop), memory.WithLatency(10*time.Millisecond))
	token := memory.NewToken("t1", false)
	m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))

	done := make(chan domain.TokenCompletedEvent, 1)
	obs := new(MockTokenObserver)
	var onLoop atomic.Bool
	obs.On("OnTokenCompleted", mock.Anything).Run(func(args mock.Arguments) {
		onLoop.Store(loop.IsMainThread())
		done <- args.Get(0).(domain.TokenCompletedEvent)
	})
	m.RegisterTokenObserver(token, obs)

	start := time.Now()
	require.True(t, m.HandleToken(token))
	select {
	case event := <-done:
		assert.Equal(t, domain.ChildKey("t1"), event.Token.Key())
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
		assert.True(t, onLoop.Load(), "delayed completions run on the loop, not the timer goroutine")
	case <-time.After(time.Second):
		t.Fatal("token never completed")
	}
}

func TestModel_CompletionIsAlwaysPosted(t *testing.T) {
	t.Run("no main thread refuses", func(t *testing.T) {
		m := memory.NewModel()
		token := memory.NewToken("t1", true)
		m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))
		assert.False(t, m.HandleToken(token))
		assert.NoError(t, m.Append(memory.Story("s1", "One")), "changes still apply without observers being told")
	})

	t.Run("synthetic completes after the call returns", func(t *testing.T) {
		queue := mainloop.NewQueue()
		m := memory.NewModel(memory.WithMainThread(queue))
		token := memory.NewToken("t1", true)
		m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))
		obs := new(MockTokenObserver)
		obs.On("OnTokenCompleted", mock.Anything).Once()
		m.RegisterTokenObserver(token, obs)

		require.True(t, m.HandleToken(token))
		obs.AssertNotCalled(t, "OnTokenCompleted", mock.Anything)
		assert.Equal(t, 1, queue.Drain())
		obs.AssertExpectations(t)
	})

	t.Run("delayed completion waits for the queue", func(t *testing.T) {
		queue := mainloop.NewQueue()
		m := memory.NewModel(memory.WithMainThread(queue), memory.WithLatency(5*time.Millisecond))
		token := memory.NewToken("t1", false)
		m.SetRoot(memory.NewRoot("root", domain.TokenChild(token)))
		obs := new(MockTokenObserver)
		obs.On("OnTokenCompleted", mock.Anything).Once()
		m.RegisterTokenObserver(token, obs)

		require.True(t, m.HandleToken(token))
		require.Eventually(t, func() bool { return queue.Pending() == 1 }, time.Second, time.Millisecond)
		obs.AssertNotCalled(t, "OnTokenCompleted", mock.Anything)
		queue.Drain()
		obs.AssertExpectations(t)
	})
}

func TestStory(t *testing.T) {
	child := memory.Story("s1", "Title")
	feature, ok := child.Feature()
	require.True(t, ok)
	assert.Equal(t, domain.FeatureCluster, feature.Kind())

	card, ok := feature.Cursor().Next()
	require.True(t, ok)
	cardFeature, _ := card.Feature()
	assert.Equal(t, domain.FeatureCard, cardFeature.Kind())

	content, ok := cardFeature.Cursor().Next()
	require.True(t, ok)
	contentFeature, _ := content.Feature()
	require.NotNil(t, contentFeature.Content())
	assert.Equal(t, "Title", contentFeature.Content().Title)
}
