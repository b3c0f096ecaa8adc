/*
Package driver implements the feed reconciliation engine.

A StreamDriver projects the content model's tree of clusters, cards, content
and pagination tokens into a flat list of leaves, and keeps that list in sync
as the model changes. Each top-level child gets one FeatureDriver; composite
drivers (ClusterDriver, CardDriver) unwrap to exactly one ContentDriver leaf,
tokens become ContinuationDriver leaves, and ZeroStateDriver / NoContentDriver
placeholders fill the list when there is nothing else to show.

All methods must be called on the main thread (see ports.MainThread). Listener
notifications for a single change are emitted removals first, and the list is
mutated before the listener runs.
*/
package driver
