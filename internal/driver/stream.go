package driver

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// entry is one position of the flattened list.
type entry struct {
	key    domain.ChildKey
	driver FeatureDriver
	leaf   LeafFeatureDriver
}

func (e *entry) kind() domain.LeafKind { return e.leaf.Kind() }

func (e *entry) isPlaceholder() bool {
	k := e.kind()
	return k == domain.LeafZeroState || k == domain.LeafNoContent
}

// StreamDriver owns the flattened leaf list of one content session.
type StreamDriver struct {
	deps     *Deps
	listener ports.StreamContentListener
	scroll   ports.ScrollRestorer
	logger   *slog.Logger

	root        domain.Feature
	built       bool
	destroyed   bool
	initialLoad bool
	restoring   bool

	entries []*entry
	// index maps a child key to its position in entries.
	index map[domain.ChildKey]int
	// skipped holds keys of children that were deliberately left out of the
	// list, so later removals of them are not treated as a desync.
	skipped map[domain.ChildKey]struct{}
	pending map[domain.ChildKey]*pendingDismiss
	leaves  []ports.Leaf

	refreshPending                  bool
	lastTokenSyntheticDuringRestore bool
}

// Option configures a StreamDriver.
type Option func(*StreamDriver)

// WithListener sets the listener that mirrors the flattened list.
func WithListener(l ports.StreamContentListener) Option {
	return func(d *StreamDriver) {
		d.listener = l
	}
}

// WithScrollRestorer sets the collaborator asked to restore scroll after non-synthetic pages.
func WithScrollRestorer(s ports.ScrollRestorer) Option {
	return func(d *StreamDriver) {
		d.scroll = s
	}
}

// WithSnackbar sets the snackbar collaborator.
func WithSnackbar(s ports.Snackbar) Option {
	return func(d *StreamDriver) {
		d.deps.Snackbar = s
	}
}

// WithDiagnostics sets the logging/metrics collaborator.
func WithDiagnostics(diag ports.Diagnostics) Option {
	return func(d *StreamDriver) {
		d.deps.Diagnostics = diag
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *StreamDriver) {
		d.deps.Logger = logger
	}
}

// WithPolicy sets the pagination policy.
func WithPolicy(p domain.Policy) Option {
	return func(d *StreamDriver) {
		d.deps.Policy = p
	}
}

// WithFactory substitutes the driver factory.
func WithFactory(f Factory) Option {
	return func(d *StreamDriver) {
		d.deps.Factory = f
	}
}

// WithMainThread sets the thread the token callbacks are checked against.
// It must be the thread the model delivers its callbacks on.
func WithMainThread(mt ports.MainThread) Option {
	return func(d *StreamDriver) {
		d.deps.MainThread = mt
	}
}

// WithMessages overrides the snackbar strings.
func WithMessages(m Messages) Option {
	return func(d *StreamDriver) {
		d.deps.Messages = m
	}
}

// WithClock sets the time source used for spinner timing.
func WithClock(now func() time.Time) Option {
	return func(d *StreamDriver) {
		d.deps.Now = now
	}
}

// WithRestoring marks the session as rebuilding previously seen state.
func WithRestoring(restoring bool) Option {
	return func(d *StreamDriver) {
		d.restoring = restoring
	}
}

// WithInitialLoad marks the first flatten as the session's initial load, in
// which case an empty list gets no placeholder.
func WithInitialLoad(initial bool) Option {
	return func(d *StreamDriver) {
		d.initialLoad = initial
	}
}

// NewStreamDriver creates the driver for one content session.
func NewStreamDriver(provider ports.ModelProvider, opts ...Option) *StreamDriver {
	d := &StreamDriver{
		deps:     &Deps{Provider: provider, Policy: domain.DefaultPolicy()},
		listener: nopListener{},
		scroll:   nopScroll{},
		index:    make(map[domain.ChildKey]int),
		skipped:  make(map[domain.ChildKey]struct{}),
		pending:  make(map[domain.ChildKey]*pendingDismiss),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.deps.Restoring = d.restoring
	d.deps.withDefaults()
	d.logger = d.deps.Logger.With("component", "stream_driver")
	return d
}

// LeafFeatureDrivers returns the flattened list, building it on first use.
// Until the list changes, every call returns the same slice.
func (d *StreamDriver) LeafFeatureDrivers() []ports.Leaf {
	if d.destroyed {
		return nil
	}
	if !d.built {
		d.build()
	}
	if d.leaves == nil {
		d.leaves = make([]ports.Leaf, len(d.entries))
		for i, e := range d.entries {
			d.leaves[i] = e.leaf
		}
	}
	return d.leaves
}

func (d *StreamDriver) build() {
	d.built = true
	defer func() { d.initialLoad = false }()

	root, ok := d.deps.Provider.Root()
	if !ok {
		if d.deps.Provider.State() == domain.ModelInitializing {
			d.logger.Debug("root feature not ready, showing loading zero state")
			d.entries = []*entry{d.newZeroStateEntry(true)}
			d.reindex(0)
			return
		}
		d.deps.report(domain.NoRootFeature, "state", d.deps.Provider.State().String())
		return
	}

	d.root = root
	d.deps.Provider.RegisterObserver(root.Key(), d)

	var children []domain.Child
	cursor := root.Cursor()
	for child, ok := cursor.Next(); ok; child, ok = cursor.Next() {
		children = append(children, child)
	}
	created := d.createEntries(children)
	d.entries = created
	d.reindex(0)

	switch d.desiredPlaceholder(d.entries, true) {
	case placeholderNoContent:
		pos := d.firstContinuation()
		d.entries = slices.Insert(d.entries, pos, d.newNoContentEntry())
		d.reindex(pos)
	case placeholderZeroState:
		d.entries = append(d.entries, d.newZeroStateEntry(false))
		d.reindex(len(d.entries) - 1)
		d.zeroStateShown(domain.ZeroStateNoContent)
	}

	d.logger.Debug("flattened stream", "children", len(children), "leaves", len(d.entries))
	d.initializeTokens(created)
}

// createEntries builds one entry per child that resolves to a leaf.
func (d *StreamDriver) createEntries(children []domain.Child) []*entry {
	created := make([]*entry, 0, len(children))
	for _, child := range children {
		drv := d.createDriver(child)
		if drv == nil {
			d.skipped[child.Key()] = struct{}{}
			continue
		}
		leaf := drv.LeafFeatureDriver()
		if leaf == nil {
			d.deps.report(domain.FailedToCreateLeaf, "child", child.Key())
			drv.OnDestroy()
			d.skipped[child.Key()] = struct{}{}
			continue
		}
		created = append(created, &entry{key: child.Key(), driver: drv, leaf: leaf})
	}
	return created
}

func (d *StreamDriver) createDriver(child domain.Child) FeatureDriver {
	switch child.Kind() {
	case domain.ChildToken:
		token, _ := child.Token()
		return d.deps.Factory.ContinuationDriver(token, d.deps, d)
	case domain.ChildFeature:
		feature, _ := child.Feature()
		switch feature.Kind() {
		case domain.FeatureCluster:
			return d.deps.Factory.ClusterDriver(feature, d.deps)
		case domain.FeatureCard:
			return d.deps.Factory.CardDriver(feature, d.deps)
		default:
			d.deps.report(domain.TopLevelInvalidFeatureType, "child", child.Key(), "feature_kind", feature.Kind().String())
			return nil
		}
	default:
		d.deps.report(domain.TopLevelUnboundChild, "child", child.Key())
		return nil
	}
}

func (d *StreamDriver) initializeTokens(entries []*entry) {
	for _, e := range entries {
		if td, ok := e.driver.(TokenDriver); ok {
			td.Initialize()
		}
	}
}

// OnChange applies a structural change of the root feature.
func (d *StreamDriver) OnChange(change domain.FeatureChange) {
	if d.destroyed || !d.built {
		return
	}
	d.logger.Debug("root changed", "appended", len(change.Appended), "removed", len(change.Removed))

	for _, child := range change.Removed {
		d.removeChild(child.Key())
	}

	added := d.createEntries(change.Appended)
	want := d.desiredPlaceholder(d.withoutPlaceholders(added), false)
	d.prunePlaceholders(want, nil, false)
	if len(added) > 0 {
		d.insertAt(len(d.entries), added)
	}
	d.insertPlaceholder(want, domain.ZeroStateNoContent)

	if d.refreshPending {
		d.refreshPending = false
		contents, tokens := domain.CountChildren(change.Appended)
		d.deps.Diagnostics.OnZeroStateRefreshCompleted(contents, tokens)
		d.logger.Info("zero state refresh completed", "contents", contents, "tokens", tokens)
		if zero := d.zeroState(); zero != nil {
			zero.setSpinner(false)
		}
	}
	d.initializeTokens(added)
}

func (d *StreamDriver) removeChild(key domain.ChildKey) {
	if i, ok := d.index[key]; ok {
		e := d.removeAt(i)
		e.driver.OnDestroy()
		return
	}
	if _, ok := d.skipped[key]; ok {
		delete(d.skipped, key)
		return
	}
	if p, ok := d.pending[key]; ok {
		delete(d.pending, key)
		p.entry.driver.OnDestroy()
		return
	}
	panic(fmt.Errorf("%w: removed child %q has no driver", domain.ErrDriverDesync, key))
}

// OnNewChildren replaces the continuation for key with the page it resolved to.
func (d *StreamDriver) OnNewChildren(key domain.ChildKey, children []domain.Child, wasSynthetic bool) {
	if d.destroyed {
		return
	}
	i, ok := d.index[key]
	if !ok || d.entries[i].kind() != domain.LeafContinuation {
		panic(fmt.Errorf("%w: no continuation driver for token %q", domain.ErrDriverDesync, key))
	}

	e := d.removeAt(i)
	e.driver.OnDestroy()

	added := d.createEntries(children)
	want := d.desiredPlaceholder(d.withoutPlaceholders(added), false)
	pos := i
	d.prunePlaceholders(want, &pos, true)
	if len(added) > 0 {
		d.insertAt(pos, added)
	}
	d.insertPlaceholder(want, domain.ZeroStateNoContentFromContinuationToken)
	d.initializeTokens(added)

	d.lastTokenSyntheticDuringRestore = wasSynthetic && d.restoring
	if !wasSynthetic {
		d.scroll.MaybeRestoreScroll()
	}
}

// ShowZeroState replaces everything with a zero state leaf.
func (d *StreamDriver) ShowZeroState(reason domain.ZeroStateReason) {
	if d.destroyed {
		return
	}
	d.built = true
	for _, e := range d.entries {
		if !e.isPlaceholder() {
			d.skipped[e.key] = struct{}{}
		}
		e.driver.OnDestroy()
	}
	d.cancelPendingDismisses()

	zero := d.newZeroStateEntry(false)
	d.entries = []*entry{zero}
	clear(d.index)
	d.reindex(0)
	d.leaves = nil

	d.listener.ContentsCleared()
	d.listener.ContentsAdded(0, []ports.Leaf{zero.leaf})
	d.zeroStateShown(reason)
}

// IsZeroStateBeingShown is true when the zero state is the only leaf and is
// not showing a refresh spinner.
func (d *StreamDriver) IsZeroStateBeingShown() bool {
	zero := d.zeroState()
	return zero != nil && len(d.entries) == 1 && !zero.IsSpinnerShowing()
}

// HasContent reports whether any content leaf is in the list.
func (d *StreamDriver) HasContent() bool {
	for _, e := range d.entries {
		if e.kind() == domain.LeafContent {
			return true
		}
	}
	return false
}

// SyntheticTokenConsumedDuringRestore reports whether the most recently resolved
// token was synthetic and consumed while restoring.
func (d *StreamDriver) SyntheticTokenConsumedDuringRestore() bool {
	return d.lastTokenSyntheticDuringRestore
}

// Snapshot captures the model keys of the current list.
func (d *StreamDriver) Snapshot(sessionID string) *domain.Snapshot {
	keys := make([]domain.ChildKey, 0, len(d.entries))
	for _, e := range d.entries {
		if !e.isPlaceholder() {
			keys = append(keys, e.key)
		}
	}
	return domain.NewSnapshot(sessionID, keys)
}

// IndexOf returns the position of the leaf for a top-level child or content key.
func (d *StreamDriver) IndexOf(key domain.ChildKey) (int, bool) {
	return d.locate(key)
}

// OnDestroy tears down every driver and stops observing the model.
func (d *StreamDriver) OnDestroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	for _, e := range d.entries {
		e.driver.OnDestroy()
	}
	d.cancelPendingDismisses()
	if d.root != nil {
		d.deps.Provider.UnregisterObserver(d.root.Key(), d)
	}
	d.entries = nil
	d.leaves = nil
	clear(d.index)
	d.logger.Debug("stream destroyed")
}

// removeAt splices one entry out and notifies the listener.
func (d *StreamDriver) removeAt(i int) *entry {
	e := d.entries[i]
	delete(d.index, e.key)
	d.entries = slices.Delete(d.entries, i, i+1)
	d.reindex(i)
	d.leaves = nil
	d.listener.ContentRemoved(i)
	return e
}

// insertAt splices entries in at i and notifies the listener.
func (d *StreamDriver) insertAt(i int, added []*entry) {
	d.entries = slices.Insert(d.entries, i, added...)
	d.reindex(i)
	d.leaves = nil
	leaves := make([]ports.Leaf, len(added))
	for j, e := range added {
		leaves[j] = e.leaf
	}
	d.listener.ContentsAdded(i, leaves)
}

func (d *StreamDriver) reindex(from int) {
	for i := from; i < len(d.entries); i++ {
		d.index[d.entries[i].key] = i
	}
}

func (d *StreamDriver) zeroStateShown(reason domain.ZeroStateReason) {
	d.deps.Diagnostics.OnZeroStateShown(reason)
	d.logger.Info("zero state shown", "reason", reason.String())
}

type nopListener struct{}

func (nopListener) ContentRemoved(int)              {}
func (nopListener) ContentsAdded(int, []ports.Leaf) {}
func (nopListener) ContentsCleared()                {}

type nopScroll struct{}

func (nopScroll) MaybeRestoreScroll() {}
