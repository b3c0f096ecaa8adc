package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/feedstream"
	"github.com/aretw0/feedstream/internal/config"
	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/internal/presentation/tui"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/observability"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Fixture   string
	SessionID string
	Restore   bool
	Expand    int
	Dismiss   []string
	Undo      bool
	Save      bool
	Anchor    int
	JSON      bool
	Banner    bool
}

// Result is what the run command reports.
type Result struct {
	Status    feedstream.Status  `json:"status"`
	Leaves    []domain.ViewState `json:"leaves"`
	Expanded  int                `json:"expanded"`
	Snackbars []string           `json:"snackbars,omitempty"`
	Snapshot  *domain.Snapshot   `json:"snapshot,omitempty"`
}

// Run renders a fixture, optionally paging, dismissing and saving a snapshot,
// and writes the result to out.
func Run(ctx context.Context, cfg config.Config, opts RunOptions, out io.Writer, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, release, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer release()

	var snackOut io.Writer
	if !opts.JSON {
		snackOut = out
	}
	snackbar := NewSnackbar(snackOut)

	session, err := Open(ctx, Options{
		Config:      cfg,
		Fixture:     opts.Fixture,
		SessionID:   opts.SessionID,
		Restore:     opts.Restore,
		Store:       store,
		Diagnostics: observability.NewLogger(logger),
		Snackbar:    snackbar,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close(context.Background())

	if opts.Banner && !opts.JSON {
		tui.PrintBanner(out)
	}

	res := &Result{}
	if _, err := session.WaitSettled(ctx); err != nil {
		return nil, err
	}
	if res.Expanded, err = session.Expand(ctx, opts.Expand); err != nil {
		return nil, err
	}

	for _, key := range opts.Dismiss {
		undo := domain.UndoAction{ConfirmationLabel: fmt.Sprintf("Dismissed %s", key)}
		if err := session.Stream.Dismiss(ctx, domain.ChildKey(key), undo, nil); err != nil {
			return nil, err
		}
	}
	if n, err := snackbar.Resolve(ctx, session.Loop, opts.Undo); err != nil {
		return nil, err
	} else if n > 0 {
		logger.Debug("snackbars resolved", "count", n, "undo", opts.Undo)
	}

	if opts.Save {
		if res.Snapshot, err = session.Stream.Snapshot(ctx, opts.Anchor); err != nil {
			return nil, err
		}
	}
	if res.Leaves, err = session.Stream.Leaves(ctx); err != nil {
		return nil, err
	}
	if res.Status, err = session.Stream.Status(ctx); err != nil {
		return nil, err
	}
	res.Snackbars = snackbar.Messages()

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return res, enc.Encode(res)
	}

	heading := fmt.Sprintf("Session %s", res.Status.SessionID)
	if err := tui.NewPrinter(out).Print(heading, res.Leaves); err != nil {
		return nil, err
	}
	if res.Snapshot != nil {
		fmt.Fprintf(out, "Snapshot saved: %d keys, anchor %d\n", len(res.Snapshot.Keys), res.Snapshot.Anchor)
	}
	return res, nil
}
