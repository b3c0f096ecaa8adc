package driver

import "github.com/aretw0/feedstream/pkg/domain"

// ClusterDriver unwraps a cluster whose cursor yields exactly one card.
type ClusterDriver struct {
	feature  domain.Feature
	deps     *Deps
	resolved bool
	card     FeatureDriver
	leaf     LeafFeatureDriver
}

// NewClusterDriver wraps a cluster feature. Its card is resolved on first use.
func NewClusterDriver(feature domain.Feature, deps *Deps) *ClusterDriver {
	return &ClusterDriver{feature: feature, deps: deps}
}

func (d *ClusterDriver) LeafFeatureDriver() LeafFeatureDriver {
	if !d.resolved {
		d.resolved = true
		d.card = d.createCard()
		if d.card != nil {
			d.leaf = d.card.LeafFeatureDriver()
		}
	}
	return d.leaf
}

func (d *ClusterDriver) createCard() FeatureDriver {
	cursor := d.feature.Cursor()
	child, ok := cursor.Next()
	if !ok {
		d.deps.report(domain.ClusterChildMissingFeature, "cluster", d.feature.Key(), "cause", "empty cursor")
		return nil
	}
	if extra, more := cursor.Next(); more {
		d.deps.report(domain.ClusterChildMissingFeature, "cluster", d.feature.Key(), "cause", "more than one child", "extra", extra.Key())
		return nil
	}
	feature, ok := child.Feature()
	if !ok {
		d.deps.report(domain.ClusterChildMissingFeature, "cluster", d.feature.Key(), "child", child.Key(), "child_kind", child.Kind().String())
		return nil
	}
	if feature.Kind() != domain.FeatureCard {
		d.deps.report(domain.ClusterChildNotCard, "cluster", d.feature.Key(), "child", child.Key(), "feature_kind", feature.Kind().String())
		return nil
	}
	return d.deps.Factory.CardDriver(feature, d.deps)
}

func (d *ClusterDriver) OnDestroy() {
	if d.card != nil {
		d.card.OnDestroy()
	}
}
