package ports

// SnackbarCallback receives how a snackbar went away.
type SnackbarCallback interface {
	OnDismissNoAction()
	OnDismissedWithAction()
}

// Snackbar shows a transient message. A nil callback means no action is offered.
type Snackbar interface {
	Show(message, actionLabel string, callback SnackbarCallback)
}

// PendingDismissCallback learns whether an optimistic dismiss stuck.
type PendingDismissCallback interface {
	OnDismissCommitted()
	OnDismissReverted()
}
