// Package cli wires fixtures, stores and the stream for the feedstream command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/feedstream"
	"github.com/aretw0/feedstream/internal/config"
	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/internal/presentation/graph"
	"github.com/aretw0/feedstream/pkg/adapters/fixture"
	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// settleInterval is how often WaitSettled polls the stream.
const settleInterval = 10 * time.Millisecond

// Options configures a Session.
type Options struct {
	Config      config.Config
	Fixture     string
	SessionID   string
	Restore     bool
	Store       ports.SnapshotStore
	Diagnostics ports.Diagnostics
	Snackbar    ports.Snackbar
	Listeners   []ports.StreamContentListener
	Logger      *slog.Logger
	// Loop is created when nil.
	Loop *mainloop.Loop
}

// Session is a running stream over a fixture-backed model.
type Session struct {
	Stream  *feedstream.Stream
	Model   *memory.Model
	Fixture *fixture.File
	Loop    *mainloop.Loop

	logger *slog.Logger
	cancel context.CancelFunc
	done   chan error
}

// Open loads the fixture, restores the snapshot when asked and starts the main loop.
func Open(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	file, err := fixture.Load(opts.Fixture)
	if err != nil {
		return nil, err
	}

	loop := opts.Loop
	if loop == nil {
		loop = mainloop.New(mainloop.WithLogger(logger))
	}
	model := memory.NewModel(
		memory.WithMainThread(loop),
		memory.WithLatency(opts.Config.FetchLatency),
		memory.WithLogger(logger),
	)
	if err := file.Apply(model); err != nil {
		return nil, fmt.Errorf("failed to apply fixture: %w", err)
	}

	streamOpts := []feedstream.Option{
		feedstream.WithLoop(loop),
		feedstream.WithLogger(logger),
		feedstream.WithPolicy(opts.Config.Policy),
	}
	if opts.Diagnostics != nil {
		streamOpts = append(streamOpts, feedstream.WithDiagnostics(opts.Diagnostics))
	}
	if opts.Snackbar != nil {
		streamOpts = append(streamOpts, feedstream.WithSnackbar(opts.Snackbar))
	}
	if opts.Store != nil {
		streamOpts = append(streamOpts, feedstream.WithStore(opts.Store))
	}
	for _, l := range opts.Listeners {
		streamOpts = append(streamOpts, feedstream.WithListener(l))
	}
	if opts.SessionID != "" {
		streamOpts = append(streamOpts, feedstream.WithSessionID(opts.SessionID))
	}

	if opts.Restore {
		if opts.Store == nil || opts.SessionID == "" {
			return nil, errors.New("restoring needs a store and a session id")
		}
		snap, err := opts.Store.Load(ctx, opts.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to restore session %q: %w", opts.SessionID, err)
		}
		logger.Info("restoring session", "session_id", snap.SessionID, "keys", len(snap.Keys))
		streamOpts = append(streamOpts, feedstream.WithRestore(snap))
	}

	stream := feedstream.New(model, streamOpts...)

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Stream:  stream,
		Model:   model,
		Fixture: file,
		Loop:    loop,
		logger:  logger,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() {
		s.done <- stream.Run(runCtx)
	}()
	return s, nil
}

// Close destroys the stream and stops the loop.
func (s *Session) Close(ctx context.Context) error {
	err := s.Stream.Close(ctx)
	s.cancel()
	<-s.done
	return err
}

// WaitSettled blocks until no continuation shows a spinner.
func (s *Session) WaitSettled(ctx context.Context) ([]domain.ViewState, error) {
	ticker := time.NewTicker(settleInterval)
	defer ticker.Stop()
	for {
		leaves, err := s.Stream.Leaves(ctx)
		if err != nil {
			return nil, err
		}
		if !busy(leaves) {
			return leaves, nil
		}
		select {
		case <-ctx.Done():
			return leaves, ctx.Err()
		case <-ticker.C:
		}
	}
}

func busy(leaves []domain.ViewState) bool {
	for _, l := range leaves {
		if l.Kind == domain.LeafContinuation && l.SpinnerShown {
			return true
		}
	}
	return false
}

// Expand activates the first continuation up to n times, waiting for each page.
// It returns how many pages were requested.
func (s *Session) Expand(ctx context.Context, n int) (int, error) {
	expanded := 0
	for expanded < n {
		leaves, err := s.WaitSettled(ctx)
		if err != nil {
			return expanded, err
		}
		index := -1
		for i, l := range leaves {
			if l.Kind == domain.LeafContinuation {
				index = i
				break
			}
		}
		if index < 0 {
			break
		}
		s.logger.Debug("expanding continuation", "index", index, "key", string(leaves[index].Key))
		if err := s.Stream.Click(ctx, index); err != nil {
			return expanded, err
		}
		expanded++
	}
	_, err := s.WaitSettled(ctx)
	return expanded, err
}

// Graph renders the model's content tree with the visible leaves highlighted.
// The tree is read on the main loop so it never races a page splice.
func (s *Session) Graph(ctx context.Context) (string, error) {
	leaves, err := s.Stream.Leaves(ctx)
	if err != nil {
		return "", err
	}
	overlay := &graph.Overlay{}
	for _, leaf := range leaves {
		overlay.Visible = append(overlay.Visible, leaf.Key)
	}
	var diagram string
	var rootErr error
	err = s.Loop.Do(ctx, func() {
		root, ok := s.Model.Root()
		if !ok {
			rootErr = fmt.Errorf("model has no root (state %s)", s.Model.State())
			return
		}
		diagram = graph.GenerateMermaid(root, overlay)
	})
	if err != nil {
		return "", err
	}
	return diagram, rootErr
}
