package driver

import (
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// ZeroStateDriver is shown when the stream has nothing to display.
// Clicking it refreshes the model; while the refresh runs it shows a spinner.
type ZeroStateDriver struct {
	viewHolder
	deps      *Deps
	spinner   bool
	onRefresh func()
}

func newZeroStateDriver(deps *Deps, spinner bool, onRefresh func()) *ZeroStateDriver {
	return &ZeroStateDriver{deps: deps, spinner: spinner, onRefresh: onRefresh}
}

func (d *ZeroStateDriver) isLeaf() {}

func (d *ZeroStateDriver) Kind() domain.LeafKind { return domain.LeafZeroState }
func (d *ZeroStateDriver) Key() domain.ChildKey  { return domain.ZeroStateKey }

func (d *ZeroStateDriver) State() domain.ViewState {
	return domain.ViewState{Kind: domain.LeafZeroState, Key: domain.ZeroStateKey, SpinnerShown: d.spinner}
}

func (d *ZeroStateDriver) Bind(slot ports.ViewSlot) {
	d.attach(slot)
	slot.Render(d.State())
}

// IsSpinnerShowing reports whether a refresh is in progress.
func (d *ZeroStateDriver) IsSpinnerShowing() bool { return d.spinner }

// OnClick triggers a zero-state refresh of the model.
func (d *ZeroStateDriver) OnClick() {
	if d.spinner {
		return
	}
	d.setSpinner(true)
	if d.onRefresh != nil {
		d.onRefresh()
	}
	d.deps.Logger.Info("zero state refresh requested")
	d.deps.Provider.TriggerRefresh(domain.RefreshZeroState)
}

func (d *ZeroStateDriver) setSpinner(shown bool) {
	d.spinner = shown
	if d.slot != nil {
		d.slot.Render(d.State())
	}
}

func (d *ZeroStateDriver) LeafFeatureDriver() LeafFeatureDriver { return d }

func (d *ZeroStateDriver) OnDestroy() {
	d.Unbind()
}

// NoContentDriver is shown when every piece of content was removed but a
// continuation token remains below it.
type NoContentDriver struct {
	viewHolder
}

func (d *NoContentDriver) isLeaf() {}

func (d *NoContentDriver) Kind() domain.LeafKind { return domain.LeafNoContent }
func (d *NoContentDriver) Key() domain.ChildKey  { return domain.NoContentKey }

func (d *NoContentDriver) State() domain.ViewState {
	return domain.ViewState{Kind: domain.LeafNoContent, Key: domain.NoContentKey}
}

func (d *NoContentDriver) Bind(slot ports.ViewSlot) {
	d.attach(slot)
	slot.Render(d.State())
}

func (d *NoContentDriver) LeafFeatureDriver() LeafFeatureDriver { return d }

func (d *NoContentDriver) OnDestroy() {
	d.Unbind()
}
