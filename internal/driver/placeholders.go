package driver

import (
	"github.com/aretw0/feedstream/pkg/domain"
)

type placeholder int

const (
	placeholderNone placeholder = iota
	placeholderNoContent
	placeholderZeroState
)

func (p placeholder) kind() domain.LeafKind {
	if p == placeholderNoContent {
		return domain.LeafNoContent
	}
	return domain.LeafZeroState
}

// desiredPlaceholder picks the placeholder for a list holding entries, which
// must not contain placeholders themselves. On the initial flatten an empty
// list stays empty while loading or restoring.
func (d *StreamDriver) desiredPlaceholder(entries []*entry, initial bool) placeholder {
	hasToken := false
	for _, e := range entries {
		switch e.kind() {
		case domain.LeafContent:
			return placeholderNone
		case domain.LeafContinuation:
			hasToken = true
		}
	}
	switch {
	case hasToken:
		return placeholderNoContent
	case initial && (d.initialLoad || d.restoring):
		return placeholderNone
	default:
		return placeholderZeroState
	}
}

// withoutPlaceholders returns the current non-placeholder entries followed by extra.
func (d *StreamDriver) withoutPlaceholders(extra []*entry) []*entry {
	out := make([]*entry, 0, len(d.entries)+len(extra))
	for _, e := range d.entries {
		if !e.isPlaceholder() {
			out = append(out, e)
		}
	}
	return append(out, extra...)
}

// prunePlaceholders removes every placeholder that is not want. When
// dropNoContent is set the NoContent leaf is removed even if wanted, so it
// can be re-inserted before the new first continuation. pos, if set, tracks an
// insertion point across the removals.
func (d *StreamDriver) prunePlaceholders(want placeholder, pos *int, dropNoContent bool) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := d.entries[i]
		if !e.isPlaceholder() {
			continue
		}
		if want != placeholderNone && e.kind() == want.kind() && !(dropNoContent && want == placeholderNoContent) {
			continue
		}
		d.removeAt(i)
		e.driver.OnDestroy()
		if pos != nil && i < *pos {
			*pos--
		}
	}
}

// insertPlaceholder adds want unless it is already in the list.
func (d *StreamDriver) insertPlaceholder(want placeholder, reason domain.ZeroStateReason) {
	if want == placeholderNone {
		return
	}
	for _, e := range d.entries {
		if e.kind() == want.kind() {
			return
		}
	}
	switch want {
	case placeholderNoContent:
		d.insertAt(d.firstContinuation(), []*entry{d.newNoContentEntry()})
	case placeholderZeroState:
		d.insertAt(len(d.entries), []*entry{d.newZeroStateEntry(false)})
		d.zeroStateShown(reason)
	}
}

func (d *StreamDriver) firstContinuation() int {
	for i, e := range d.entries {
		if e.kind() == domain.LeafContinuation {
			return i
		}
	}
	return len(d.entries)
}

func (d *StreamDriver) zeroState() *ZeroStateDriver {
	i, ok := d.index[domain.ZeroStateKey]
	if !ok {
		return nil
	}
	zero, _ := d.entries[i].leaf.(*ZeroStateDriver)
	return zero
}

func (d *StreamDriver) newZeroStateEntry(spinner bool) *entry {
	zero := newZeroStateDriver(d.deps, spinner, func() { d.refreshPending = true })
	return &entry{key: domain.ZeroStateKey, driver: zero, leaf: zero}
}

func (d *StreamDriver) newNoContentEntry() *entry {
	nc := &NoContentDriver{}
	return &entry{key: domain.NoContentKey, driver: nc, leaf: nc}
}
