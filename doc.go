/*
Package feedstream renders a paginated, hierarchical content feed as a flat list of leaves.

A content model exposes a tree of features (clusters, cards, content) and
pagination tokens. The engine flattens that tree into leaves a host view can
bind to, keeps the list in sync as the model changes, expands tokens into the
pages they resolve to, and shows placeholders when nothing is left to display.

# Concept

Every change to the list is reported to a StreamContentListener as removals
and insertions at exact indices, so a host can mirror the list without diffing.
All engine state is confined to one main loop; model callbacks are posted to it.

# Usage

	loop := mainloop.New()
	model := memory.NewModel(memory.WithMainThread(loop))
	model.SetRoot(memory.NewRoot("root",
		memory.Story("s1", "Hello"),
		memory.TokenChild("t1", false),
	))

	stream := feedstream.New(model, feedstream.WithLoop(loop))
	go stream.Run(ctx)

	leaves, err := stream.Leaves(ctx)
	...
	err = stream.Click(ctx, len(leaves)-1) // load the next page

# Key Features

  - Deterministic flattening with structural errors reported, never fatal.
  - Continuation tokens with spinner diagnostics, synthetic auto-consumption and restore gating.
  - Zero-state and no-content placeholders.
  - Optimistic dismiss with undo.
  - Session snapshots persisted in memory, on disk or in Redis.
*/
package feedstream
