package driver

import (
	"slices"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

type pendingDismiss struct {
	entry     *entry
	position  int
	callback  ports.PendingDismissCallback
	cancelled bool
}

// TriggerPendingDismiss optimistically removes the content leaf for key and
// offers an undo through the snackbar. key is either the top-level child key
// or the key of the content it unwraps to.
func (d *StreamDriver) TriggerPendingDismiss(key domain.ChildKey, undo domain.UndoAction, callback ports.PendingDismissCallback) {
	if d.destroyed {
		return
	}
	i, ok := d.locate(key)
	if !ok {
		d.logger.Warn("dismiss of unknown content ignored", "key", string(key))
		return
	}
	if d.entries[i].kind() != domain.LeafContent {
		d.logger.Warn("dismiss of non-content leaf ignored", "key", string(key), "kind", d.entries[i].kind().String())
		return
	}

	e := d.removeAt(i)
	p := &pendingDismiss{entry: e, position: i, callback: callback}
	d.pending[e.key] = p

	want := d.desiredPlaceholder(d.withoutPlaceholders(nil), false)
	d.prunePlaceholders(want, nil, false)
	d.insertPlaceholder(want, domain.ZeroStateContentDismissed)

	label := undo.ActionLabel
	if label == "" {
		label = d.deps.Messages.Undo
	}
	d.logger.Debug("content dismissed pending confirmation", "key", string(key), "position", i)
	d.deps.Snackbar.Show(undo.ConfirmationLabel, label, &dismissSnackbar{stream: d, pending: p})
}

type dismissSnackbar struct {
	stream  *StreamDriver
	pending *pendingDismiss
}

func (s *dismissSnackbar) OnDismissNoAction()     { s.stream.commitDismiss(s.pending) }
func (s *dismissSnackbar) OnDismissedWithAction() { s.stream.revertDismiss(s.pending) }

func (d *StreamDriver) commitDismiss(p *pendingDismiss) {
	if p.cancelled || d.destroyed {
		return
	}
	p.cancelled = true
	delete(d.pending, p.entry.key)
	p.entry.driver.OnDestroy()
	d.skipped[p.entry.key] = struct{}{}
	d.logger.Debug("dismiss committed", "key", string(p.entry.key))
	if p.callback != nil {
		p.callback.OnDismissCommitted()
	}
}

func (d *StreamDriver) revertDismiss(p *pendingDismiss) {
	if p.cancelled || d.destroyed {
		return
	}
	p.cancelled = true
	delete(d.pending, p.entry.key)

	if !d.HasContent() {
		d.rebuildWith(p)
	} else {
		d.insertAt(d.reinsertPosition(d.entries, p), []*entry{p.entry})
	}
	d.logger.Debug("dismiss reverted", "key", string(p.entry.key))
	if p.callback != nil {
		p.callback.OnDismissReverted()
	}
}

// rebuildWith recomputes the whole list with the dismissed entry reinstated. Placeholders shown
// for the dismissal go away, so the listener gets a full reset.
func (d *StreamDriver) rebuildWith(p *pendingDismiss) {
	kept := make([]*entry, 0, len(d.entries)+1)
	for _, cur := range d.entries {
		if cur.isPlaceholder() {
			delete(d.index, cur.key)
			cur.driver.OnDestroy()
			continue
		}
		kept = append(kept, cur)
	}
	kept = slices.Insert(kept, d.reinsertPosition(kept, p), p.entry)
	d.entries = kept
	d.reindex(0)
	d.leaves = nil

	leaves := make([]ports.Leaf, len(d.entries))
	for i, cur := range d.entries {
		leaves[i] = cur.leaf
	}
	d.listener.ContentsCleared()
	d.listener.ContentsAdded(0, leaves)
}

// reinsertPosition places a reverted entry before the first entry that
// follows it in the root's child order, so undoing several dismisses in any
// order rebuilds the model's order. Keys the root no longer lists fall back to
// the position the entry was removed from.
func (d *StreamDriver) reinsertPosition(entries []*entry, p *pendingDismiss) int {
	fallback := min(p.position, len(entries))
	if d.root == nil {
		return fallback
	}
	rank := make(map[domain.ChildKey]int)
	cursor := d.root.Cursor()
	for child, ok := cursor.Next(); ok; child, ok = cursor.Next() {
		rank[child.Key()] = len(rank)
	}
	own, ok := rank[p.entry.key]
	if !ok {
		return fallback
	}
	after := 0
	for i, cur := range entries {
		r, ok := rank[cur.key]
		if !ok {
			continue
		}
		if r > own {
			return i
		}
		after = i + 1
	}
	return after
}

func (d *StreamDriver) locate(key domain.ChildKey) (int, bool) {
	if i, ok := d.index[key]; ok {
		return i, true
	}
	for i, e := range d.entries {
		if e.leaf.Key() == key {
			return i, true
		}
	}
	return 0, false
}

func (d *StreamDriver) cancelPendingDismisses() {
	for key, p := range d.pending {
		p.cancelled = true
		p.entry.driver.OnDestroy()
		d.skipped[key] = struct{}{}
		delete(d.pending, key)
	}
}
