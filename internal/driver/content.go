package driver

import (
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// ContentDriver is the leaf for a single piece of content.
type ContentDriver struct {
	viewHolder
	key     domain.ChildKey
	content domain.Content
}

// NewContentDriver wraps a content feature. The payload is copied.
func NewContentDriver(feature domain.Feature) *ContentDriver {
	content := domain.Content{ID: feature.Key()}
	if c := feature.Content(); c != nil {
		content = *c
		if content.ID == "" {
			content.ID = feature.Key()
		}
	}
	return &ContentDriver{key: feature.Key(), content: content}
}

func (d *ContentDriver) isLeaf() {}

func (d *ContentDriver) Kind() domain.LeafKind { return domain.LeafContent }
func (d *ContentDriver) Key() domain.ChildKey  { return d.key }

// Content returns the rendered payload.
func (d *ContentDriver) Content() domain.Content { return d.content }

func (d *ContentDriver) State() domain.ViewState {
	content := d.content
	return domain.ViewState{Kind: domain.LeafContent, Key: d.key, Content: &content}
}

func (d *ContentDriver) Bind(slot ports.ViewSlot) {
	d.attach(slot)
	slot.Render(d.State())
}

func (d *ContentDriver) LeafFeatureDriver() LeafFeatureDriver { return d }

func (d *ContentDriver) OnDestroy() {
	d.Unbind()
}
