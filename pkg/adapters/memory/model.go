package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// ErrPageUnavailable is reported to token observers when a scripted failure
// is consumed.
var ErrPageUnavailable = errors.New("page unavailable")

// Model is an in-memory content model backed by a scripted set of pages.
// Safe for concurrent use. Observer callbacks are always posted to the main
// thread set by WithMainThread, never run inside the call that caused them.
// Without one the model refuses tokens and drops change notifications.
type Model struct {
	mu        sync.Mutex
	state     domain.ModelState
	root      *Node
	pages     map[domain.ChildKey][]domain.Child
	failures  map[domain.ChildKey]int
	refresh   []domain.Child
	inFlight  map[domain.ChildKey]bool
	observers map[domain.ChildKey][]ports.FeatureObserver
	tokens    map[domain.ChildKey][]ports.TokenObserver

	mainThread ports.MainThread
	latency    time.Duration
	logger     *slog.Logger
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithMainThread sets where observer callbacks run.
func WithMainThread(mt ports.MainThread) ModelOption {
	return func(m *Model) {
		m.mainThread = mt
	}
}

// WithLatency delays every non-synthetic page and refresh.
func WithLatency(d time.Duration) ModelOption {
	return func(m *Model) {
		m.latency = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithState overrides the initial state.
func WithState(s domain.ModelState) ModelOption {
	return func(m *Model) {
		m.state = s
	}
}

// NewModel creates an empty model. It stays Initializing until SetRoot.
func NewModel(opts ...ModelOption) *Model {
	m := &Model{
		state:      domain.ModelInitializing,
		pages:      make(map[domain.ChildKey][]domain.Child),
		failures:   make(map[domain.ChildKey]int),
		inFlight:   make(map[domain.ChildKey]bool),
		observers:  make(map[domain.ChildKey][]ports.FeatureObserver),
		tokens:     make(map[domain.ChildKey][]ports.TokenObserver),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "memory_model")
	return m
}

// SetRoot installs the root feature and marks the model Ready.
func (m *Model) SetRoot(root *Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
	m.state = domain.ModelReady
}

// SetState forces the model state.
func (m *Model) SetState(s domain.ModelState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// AddPage scripts the children a token resolves to.
func (m *Model) AddPage(token domain.ChildKey, children ...domain.Child) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[token] = children
}

// FailNext makes the next n activations of token fail.
func (m *Model) FailNext(token domain.ChildKey, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[token] = n
}

// SetRefresh scripts the root children installed by the next refresh.
func (m *Model) SetRefresh(children ...domain.Child) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = children
}

func (m *Model) State() domain.ModelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Model) Root() (domain.Feature, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil {
		return nil, false
	}
	return m.root, true
}

// Append adds children to the end of the root and notifies observers.
func (m *Model) Append(children ...domain.Child) error {
	root, err := m.requireRoot()
	if err != nil {
		return err
	}
	root.append(children...)
	m.notify(domain.FeatureChange{Key: root.Key(), Appended: children})
	return nil
}

// Remove drops root children by key and notifies observers.
func (m *Model) Remove(keys ...domain.ChildKey) error {
	root, err := m.requireRoot()
	if err != nil {
		return err
	}
	removed := root.remove(keys...)
	if len(removed) == 0 {
		return fmt.Errorf("no root children match %v", keys)
	}
	m.notify(domain.FeatureChange{Key: root.Key(), Removed: removed})
	return nil
}

func (m *Model) requireRoot() (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil {
		return nil, fmt.Errorf("model has no root (state %s)", m.state)
	}
	return m.root, nil
}

func (m *Model) notify(change domain.FeatureChange) {
	m.mu.Lock()
	observers := slices.Clone(m.observers[change.Key])
	m.mu.Unlock()

	m.later(0, func() {
		for _, o := range observers {
			o.OnChange(change)
		}
	})
}

func (m *Model) RegisterObserver(key domain.ChildKey, o ports.FeatureObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers[key] = append(m.observers[key], o)
}

func (m *Model) UnregisterObserver(key domain.ChildKey, o ports.FeatureObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers[key] = slices.DeleteFunc(m.observers[key], func(cur ports.FeatureObserver) bool { return cur == o })
	if len(m.observers[key]) == 0 {
		delete(m.observers, key)
	}
}

func (m *Model) RegisterTokenObserver(token domain.Token, o ports.TokenObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Key()] = append(m.tokens[token.Key()], o)
}

func (m *Model) UnregisterTokenObserver(token domain.Token, o ports.TokenObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := token.Key()
	m.tokens[key] = slices.DeleteFunc(m.tokens[key], func(cur ports.TokenObserver) bool { return cur == o })
	if len(m.tokens[key]) == 0 {
		delete(m.tokens, key)
	}
}

// ObserverCount returns how many feature and token observers are registered.
func (m *Model) ObserverCount() (features, tokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obs := range m.observers {
		features += len(obs)
	}
	for _, obs := range m.tokens {
		tokens += len(obs)
	}
	return features, tokens
}

// HandleToken starts resolving token. It refuses tokens that are already in
// flight or arrive before the model is Ready.
func (m *Model) HandleToken(token domain.Token) bool {
	m.mu.Lock()
	key := token.Key()
	if m.mainThread == nil {
		m.mu.Unlock()
		m.logger.Warn("token refused, no main thread configured", "token", string(key))
		return false
	}
	if m.state != domain.ModelReady {
		m.mu.Unlock()
		m.logger.Debug("token refused, model not ready", "token", string(key))
		return false
	}
	if m.inFlight[key] {
		m.mu.Unlock()
		m.logger.Debug("token refused, already in flight", "token", string(key))
		return false
	}
	m.inFlight[key] = true
	m.mu.Unlock()

	delay := m.latency
	if token.Synthetic() {
		delay = 0
	}
	m.later(delay, func() { m.complete(token) })
	return true
}

func (m *Model) later(delay time.Duration, fn func()) {
	if m.mainThread == nil {
		m.logger.Warn("callback dropped, no main thread configured")
		return
	}
	if delay <= 0 {
		m.mainThread.Post(fn)
		return
	}
	time.AfterFunc(delay, func() { m.mainThread.Post(fn) })
}

func (m *Model) complete(token domain.Token) {
	key := token.Key()

	m.mu.Lock()
	delete(m.inFlight, key)
	observers := slices.Clone(m.tokens[key])
	if n := m.failures[key]; n > 0 {
		m.failures[key] = n - 1
		m.mu.Unlock()

		err := fmt.Errorf("%w: token %q", ErrPageUnavailable, key)
		m.logger.Debug("token failed", "token", string(key), "remaining_failures", n-1)
		for _, o := range observers {
			o.OnError(err)
		}
		return
	}
	page := m.pages[key]
	delete(m.pages, key)
	root := m.root
	m.mu.Unlock()

	if root != nil && !root.splice(key, page) {
		m.logger.Debug("resolved token is not a root child", "token", string(key))
	}
	m.logger.Debug("token resolved", "token", string(key), "children", len(page))
	for _, o := range observers {
		o.OnTokenCompleted(domain.TokenCompletedEvent{Token: token, Children: page})
	}
}

// TriggerRefresh replaces the root children with the scripted refresh page.
// Observers always get a change, an empty one when nothing was scripted.
func (m *Model) TriggerRefresh(reason domain.RefreshReason) {
	m.mu.Lock()
	root := m.root
	next := m.refresh
	m.refresh = nil
	m.mu.Unlock()

	m.logger.Info("refresh triggered", "reason", reason.String())
	if root == nil {
		return
	}
	m.later(m.latency, func() {
		change := domain.FeatureChange{Key: root.Key()}
		if next != nil {
			change.Removed = root.replace(next)
			change.Appended = next
		}
		m.mu.Lock()
		observers := slices.Clone(m.observers[root.Key()])
		m.mu.Unlock()
		for _, o := range observers {
			o.OnChange(change)
		}
	})
}
