package feedstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/feedstream/internal/driver"
	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/google/uuid"
)

// ErrNotClickable is returned by Click for leaves that ignore activation.
var ErrNotClickable = errors.New("leaf is not clickable")

// Stream is the high-level entry point. It owns one content session and
// serializes every call onto its main loop.
type Stream struct {
	loop      *mainloop.Loop
	model     ports.ModelProvider
	driver    *driver.StreamDriver
	listeners listenerSet
	scroll    ports.ScrollRestorer
	store     ports.SnapshotStore
	sessionID string
	restore   *domain.Snapshot
	logger    *slog.Logger

	driverOpts []driver.Option
}

// Option configures a Stream.
type Option func(*Stream)

// WithLoop sets the main loop. The model must post its callbacks to the same loop.
func WithLoop(loop *mainloop.Loop) Option {
	return func(s *Stream) {
		s.loop = loop
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithPolicy sets the pagination policy.
func WithPolicy(p domain.Policy) Option {
	return func(s *Stream) {
		s.driverOpts = append(s.driverOpts, driver.WithPolicy(p))
	}
}

// WithDiagnostics sets the diagnostics sink.
func WithDiagnostics(d ports.Diagnostics) Option {
	return func(s *Stream) {
		s.driverOpts = append(s.driverOpts, driver.WithDiagnostics(d))
	}
}

// WithSnackbar sets the snackbar collaborator.
func WithSnackbar(sb ports.Snackbar) Option {
	return func(s *Stream) {
		s.driverOpts = append(s.driverOpts, driver.WithSnackbar(sb))
	}
}

// WithMessages overrides the user-visible strings.
func WithMessages(m driver.Messages) Option {
	return func(s *Stream) {
		s.driverOpts = append(s.driverOpts, driver.WithMessages(m))
	}
}

// WithInitialLoad marks the first flatten as the session's initial load.
func WithInitialLoad(initial bool) Option {
	return func(s *Stream) {
		s.driverOpts = append(s.driverOpts, driver.WithInitialLoad(initial))
	}
}

// WithListener adds a listener mirroring the flattened list. Listeners are
// called on the main loop in registration order.
func WithListener(l ports.StreamContentListener) Option {
	return func(s *Stream) {
		s.listeners = append(s.listeners, l)
	}
}

// WithScrollRestorer sets the collaborator asked to restore scroll.
func WithScrollRestorer(r ports.ScrollRestorer) Option {
	return func(s *Stream) {
		s.scroll = r
	}
}

// WithStore persists snapshots taken by Snapshot.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *Stream) {
		s.store = store
	}
}

// WithSessionID sets the session ID. A random one is generated otherwise.
func WithSessionID(id string) Option {
	return func(s *Stream) {
		s.sessionID = id
	}
}

// WithRestore marks the session as restoring from snap. The snapshot's
// session ID is reused unless WithSessionID overrides it.
func WithRestore(snap *domain.Snapshot) Option {
	return func(s *Stream) {
		s.restore = snap
	}
}

// New creates a stream over model.
func New(model ports.ModelProvider, opts ...Option) *Stream {
	s := &Stream{model: model}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.loop == nil {
		s.loop = mainloop.New(mainloop.WithLogger(s.logger))
	}
	if s.sessionID == "" && s.restore != nil {
		s.sessionID = s.restore.SessionID
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}
	s.logger = s.logger.With("session_id", s.sessionID)

	base := []driver.Option{
		driver.WithLogger(s.logger),
		driver.WithMainThread(s.loop),
		driver.WithListener(&s.listeners),
		driver.WithScrollRestorer(s),
		driver.WithRestoring(s.restore != nil),
	}
	s.driver = driver.NewStreamDriver(model, append(base, s.driverOpts...)...)
	return s
}

// SessionID returns the session this stream renders.
func (s *Stream) SessionID() string { return s.sessionID }

// Loop returns the main loop the stream runs on.
func (s *Stream) Loop() *mainloop.Loop { return s.loop }

// Run drives the main loop until ctx is canceled.
func (s *Stream) Run(ctx context.Context) error {
	s.logger.Debug("stream loop starting")
	return s.loop.Run(ctx)
}

func (s *Stream) do(ctx context.Context, fn func()) error {
	if err := s.loop.Do(ctx, fn); err != nil {
		return fmt.Errorf("stream loop: %w", err)
	}
	return nil
}

// Leaves flattens the feed, if needed, and returns what each leaf renders.
func (s *Stream) Leaves(ctx context.Context) ([]domain.ViewState, error) {
	var states []domain.ViewState
	err := s.do(ctx, func() {
		leaves := s.driver.LeafFeatureDrivers()
		states = make([]domain.ViewState, len(leaves))
		for i, leaf := range leaves {
			states[i] = leaf.State()
		}
	})
	return states, err
}

// Click activates the leaf at index.
func (s *Stream) Click(ctx context.Context, index int) error {
	var clickErr error
	err := s.do(ctx, func() {
		leaves := s.driver.LeafFeatureDrivers()
		if index < 0 || index >= len(leaves) {
			clickErr = fmt.Errorf("%w: index %d of %d", domain.ErrLeafNotFound, index, len(leaves))
			return
		}
		clickable, ok := leaves[index].(ports.Clickable)
		if !ok {
			clickErr = fmt.Errorf("%w: %s %q", ErrNotClickable, leaves[index].Kind(), leaves[index].Key())
			return
		}
		s.logger.Debug("leaf clicked", "index", index, "key", string(leaves[index].Key()))
		clickable.OnClick()
	})
	if err != nil {
		return err
	}
	return clickErr
}

// Dismiss optimistically removes the content leaf for key and offers an undo.
func (s *Stream) Dismiss(ctx context.Context, key domain.ChildKey, undo domain.UndoAction, cb ports.PendingDismissCallback) error {
	var dismissErr error
	err := s.do(ctx, func() {
		s.driver.LeafFeatureDrivers()
		i, ok := s.driver.IndexOf(key)
		if !ok {
			dismissErr = fmt.Errorf("%w: %q", domain.ErrLeafNotFound, key)
			return
		}
		if kind := s.driver.LeafFeatureDrivers()[i].Kind(); kind != domain.LeafContent {
			dismissErr = fmt.Errorf("%w: %q is %s, not content", domain.ErrLeafNotFound, key, kind)
			return
		}
		s.driver.TriggerPendingDismiss(key, undo, cb)
	})
	if err != nil {
		return err
	}
	return dismissErr
}

// ShowZeroState replaces the feed with the zero state.
func (s *Stream) ShowZeroState(ctx context.Context, reason domain.ZeroStateReason) error {
	return s.do(ctx, func() {
		s.driver.ShowZeroState(reason)
	})
}

// Status summarizes the stream.
type Status struct {
	SessionID                           string `json:"session_id"`
	Leaves                              int    `json:"leaves"`
	HasContent                          bool   `json:"has_content"`
	ZeroStateShown                      bool   `json:"zero_state_shown"`
	SyntheticTokenConsumedDuringRestore bool   `json:"synthetic_token_consumed_during_restore"`
	Restoring                           bool   `json:"restoring"`
}

// Status reports what the stream currently shows.
func (s *Stream) Status(ctx context.Context) (Status, error) {
	st := Status{SessionID: s.sessionID, Restoring: s.restore != nil}
	err := s.do(ctx, func() {
		st.Leaves = len(s.driver.LeafFeatureDrivers())
		st.HasContent = s.driver.HasContent()
		st.ZeroStateShown = s.driver.IsZeroStateBeingShown()
		st.SyntheticTokenConsumedDuringRestore = s.driver.SyntheticTokenConsumedDuringRestore()
	})
	return st, err
}

// Snapshot captures the current list and saves it when a store is configured.
// anchor is the index of the first visible leaf.
func (s *Stream) Snapshot(ctx context.Context, anchor int) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.do(ctx, func() {
		leaves := s.driver.LeafFeatureDrivers()
		snap = s.driver.Snapshot(s.sessionID)
		// The anchor is a leaf index; map it to the same key in the snapshot.
		if anchor >= 0 && anchor < len(leaves) {
			for i, key := range snap.Keys {
				if j, ok := s.driver.IndexOf(key); ok && j == anchor {
					snap.Anchor = i
					break
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}
		s.logger.Info("snapshot saved", "keys", len(snap.Keys))
	}
	return snap, nil
}

// MaybeRestoreScroll implements ports.ScrollRestorer. It forwards to the
// configured restorer once a restored session receives a non-synthetic page.
func (s *Stream) MaybeRestoreScroll() {
	if s.restore != nil {
		if key, ok := s.restore.AnchorKey(); ok {
			s.logger.Debug("restoring scroll", "anchor", string(key))
		}
	}
	if s.scroll != nil {
		s.scroll.MaybeRestoreScroll()
	}
}

// Close destroys the session. The loop keeps running until Run's context ends.
func (s *Stream) Close(ctx context.Context) error {
	return s.do(ctx, s.driver.OnDestroy)
}

type listenerSet []ports.StreamContentListener

func (ls *listenerSet) ContentRemoved(index int) {
	for _, l := range *ls {
		l.ContentRemoved(index)
	}
}

func (ls *listenerSet) ContentsAdded(start int, leaves []ports.Leaf) {
	for _, l := range *ls {
		l.ContentsAdded(start, leaves)
	}
}

func (ls *listenerSet) ContentsCleared() {
	for _, l := range *ls {
		l.ContentsCleared()
	}
}
