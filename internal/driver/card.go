package driver

import "github.com/aretw0/feedstream/pkg/domain"

// CardDriver unwraps a card whose cursor yields exactly one content feature.
type CardDriver struct {
	feature  domain.Feature
	deps     *Deps
	resolved bool
	content  *ContentDriver
}

// NewCardDriver wraps a card feature. Its content is resolved on first use.
func NewCardDriver(feature domain.Feature, deps *Deps) *CardDriver {
	return &CardDriver{feature: feature, deps: deps}
}

func (d *CardDriver) LeafFeatureDriver() LeafFeatureDriver {
	if !d.resolved {
		d.resolved = true
		d.content = d.createContent()
	}
	if d.content == nil {
		return nil
	}
	return d.content
}

func (d *CardDriver) createContent() *ContentDriver {
	cursor := d.feature.Cursor()
	child, ok := cursor.Next()
	if !ok {
		d.deps.report(domain.CardChildMissingFeature, "card", d.feature.Key(), "cause", "empty cursor")
		return nil
	}
	if extra, more := cursor.Next(); more {
		d.deps.report(domain.CardChildMissingFeature, "card", d.feature.Key(), "cause", "more than one child", "extra", extra.Key())
		return nil
	}
	feature, ok := child.Feature()
	if !ok || feature.Kind() != domain.FeatureContent {
		d.deps.report(domain.CardChildMissingFeature, "card", d.feature.Key(), "child", child.Key(), "child_kind", child.Kind().String())
		return nil
	}
	if feature.Content() == nil {
		d.deps.report(domain.NullSharedStates, "card", d.feature.Key(), "content", feature.Key())
		return nil
	}
	return NewContentDriver(feature)
}

func (d *CardDriver) OnDestroy() {
	if d.content != nil {
		d.content.OnDestroy()
	}
}
