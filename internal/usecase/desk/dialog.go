package desk

import "context"

type Icon string

const (
	IconWarning Icon = "warning"
	IconSuccess Icon = "success"
	IconError   Icon = "error"
)

// Prompt describes a blocking confirm/cancel dialog.
type Prompt struct {
	Title        string
	Text         string
	Icon         Icon
	ConfirmLabel string
	CancelLabel  string
}

// Confirmer resolves a prompt to the operator's answer. An error is
// treated as a cancel.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// AlwaysConfirm answers every prompt with answer.
func AlwaysConfirm(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		return answer, nil
	})
}

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) Icon() Icon {
	if l == LevelError {
		return IconError
	}
	return IconSuccess
}

// Notice is a dismiss-only notification.
type Notice struct {
	Level Level
	Title string
	Text  string
}

type Notifier interface {
	Notify(n Notice)
}

type NotifyFunc func(n Notice)

func (f NotifyFunc) Notify(n Notice) { f(n) }

var discardNotifier = NotifyFunc(func(Notice) {})

func deletePrompt() Prompt {
	return Prompt{
		Title:        "Are you sure?",
		Text:         "You won't be able to revert this!",
		Icon:         IconWarning,
		ConfirmLabel: "Yes, delete it!",
		CancelLabel:  "Cancel",
	}
}

var (
	noticeStatusUpdated = Notice{Level: LevelSuccess, Title: "Updated!", Text: "Order status has been updated."}
	noticeStatusFailed  = Notice{Level: LevelError, Title: "Error!", Text: "Failed to update order status."}
	noticeDeleted       = Notice{Level: LevelSuccess, Title: "Deleted!", Text: "Order has been deleted."}
	noticeDeleteFailed  = Notice{Level: LevelError, Title: "Error!", Text: "Failed to delete order."}
)
