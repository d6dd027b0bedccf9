package core

// NotifyKind classifies a user-facing notification.
type NotifyKind string

const (
	NotifyInfo    NotifyKind = "info"
	NotifyLoading NotifyKind = "loading"
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Notifier is the abstract notification sink. The desktop shell emits
// these to the frontend toast layer; tests use a recording fake.
type Notifier interface {
	Notify(kind NotifyKind, title, detail string)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(NotifyKind, string, string) {}
