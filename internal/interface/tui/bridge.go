package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"example.com/orderdesk/internal/usecase/desk"
)

type confirmRequest struct {
	prompt desk.Prompt
	reply  chan bool
}

// confirmMsg asks the model to show a blocking confirm modal.
type confirmMsg confirmRequest

type noticeMsg struct {
	notice desk.Notice
}

// Bridge carries desk dialogs into the bubbletea loop. It implements
// desk.Confirmer and desk.Notifier; Confirm blocks the calling command
// until the operator answers the modal.
type Bridge struct {
	prompts chan confirmRequest
	notices chan desk.Notice

	once sync.Once
	done chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{
		prompts: make(chan confirmRequest),
		notices: make(chan desk.Notice, 8),
		done:    make(chan struct{}),
	}
}

var (
	_ desk.Confirmer = (*Bridge)(nil)
	_ desk.Notifier  = (*Bridge)(nil)
)

func (b *Bridge) Confirm(ctx context.Context, p desk.Prompt) (bool, error) {
	req := confirmRequest{prompt: p, reply: make(chan bool, 1)}
	select {
	case b.prompts <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-b.done:
		return false, context.Canceled
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-b.done:
		return false, context.Canceled
	}
}

func (b *Bridge) Notify(n desk.Notice) {
	select {
	case b.notices <- n:
	case <-b.done:
	}
}

// Close releases any command still waiting on a dialog.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// listen blocks until the next dialog arrives and delivers it as a
// message. The model re-arms it after every delivery.
func (b *Bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-b.prompts:
			return confirmMsg(req)
		case n := <-b.notices:
			return noticeMsg{notice: n}
		case <-b.done:
			return nil
		}
	}
}
