/*
Package ports defines the boundaries of the feed reconciliation engine.

These interfaces decouple the drivers from the content model that feeds them
and from the host that renders their output, so the engine can be embedded in
any interface: a CLI, an HTTP inspection server or a UI toolkit.

# Key Interfaces

  - ModelProvider: the hierarchical content model (consumed).
  - StreamContentListener: flattened list notifications (produced).
  - Snackbar: transient messages with an optional action (consumed).
  - Diagnostics: fire-and-forget logging and metrics (consumed).
  - MainThread: the single logical thread all driver state is confined to.
  - SnapshotStore: persistence for session snapshots used when restoring.
*/
package ports
