// Package desk holds the view state of the order management screen and
// reconciles it with the document store after each confirmed response.
package desk

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domorder "example.com/orderdesk/internal/domain/order"
)

// Store is the document store as seen by the screen.
type Store interface {
	List(ctx context.Context) ([]domorder.Order, error)
	UpdateStatus(ctx context.Context, id string, status domorder.Status) error
	Delete(ctx context.Context, id string) error
}

// ErrCancelled is returned by Delete when the operator declines the prompt.
var ErrCancelled = errors.New("delete cancelled")

type Desk struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	orders     []domorder.Order
	filter     domorder.Filter
	selectedID string
	loaded     bool
	loadErr    error
}

type Option func(*Desk)

func WithNotifier(n Notifier) Option {
	return func(d *Desk) { d.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Desk) { d.logger = l }
}

func New(store Store, opts ...Option) *Desk {
	d := &Desk{
		store:    store,
		notifier: discardNotifier,
		logger:   slog.Default(),
		filter:   domorder.FilterAll,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load fetches every order and replaces the local copy. On failure the
// previous orders are kept and the error is recorded for the status bar.
func (d *Desk) Load(ctx context.Context) error {
	orders, err := d.store.List(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.logger.ErrorContext(ctx, "fetch orders failed", slog.Any("error", err))
		d.loadErr = err
		return err
	}
	d.orders = cloneOrders(orders)
	d.loaded = true
	d.loadErr = nil
	return nil
}

// Refresh re-fetches from the store to recover from drift.
func (d *Desk) Refresh(ctx context.Context) error {
	return d.Load(ctx)
}

func (d *Desk) Filter() domorder.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

func (d *Desk) SetFilter(f domorder.Filter) error {
	if _, err := domorder.ParseFilter(string(f)); err != nil {
		return err
	}
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()
	return nil
}

// Visible returns the orders passing the current filter.
func (d *Desk) Visible() []domorder.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneOrders(d.filter.Apply(d.orders))
}

// Orders returns a copy of every fetched order.
func (d *Desk) Orders() []domorder.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneOrders(d.orders)
}

// Toggle expands the detail panel for id, or collapses it when id is
// already expanded. At most one panel is open.
func (d *Desk) Toggle(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedID == id {
		d.selectedID = ""
		return
	}
	d.selectedID = id
}

func (d *Desk) SelectedID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectedID
}

// Selected returns the expanded order if it is still present.
func (d *Desk) Selected() (domorder.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedID == "" {
		return domorder.Order{}, false
	}
	i := d.indexLocked(d.selectedID)
	if i < 0 {
		return domorder.Order{}, false
	}
	return d.orders[i].Clone(), true
}

// UpdateStatus patches the order's status in the store and, once the store
// confirms, in the local copy. Only the matching order changes.
func (d *Desk) UpdateStatus(ctx context.Context, id string, status domorder.Status) error {
	if !status.IsValid() {
		d.logger.ErrorContext(ctx, "update order status failed",
			slog.String("order_id", id), slog.Any("error", domorder.ErrInvalidStatus))
		d.notifier.Notify(noticeStatusFailed)
		return domorder.ErrInvalidStatus
	}
	if err := d.store.UpdateStatus(ctx, id, status); err != nil {
		d.logger.ErrorContext(ctx, "update order status failed",
			slog.String("order_id", id), slog.Any("error", err))
		d.notifier.Notify(noticeStatusFailed)
		return err
	}

	d.mu.Lock()
	if i := d.indexLocked(id); i >= 0 {
		d.orders[i].Status = status
	}
	d.mu.Unlock()

	d.notifier.Notify(noticeStatusUpdated)
	return nil
}

// Delete asks c for confirmation and removes the order from the store and
// then from the local copy. A cancelled prompt sends nothing.
func (d *Desk) Delete(ctx context.Context, id string, c Confirmer) error {
	ok, err := c.Confirm(ctx, deletePrompt())
	if err != nil {
		d.logger.WarnContext(ctx, "delete confirmation aborted",
			slog.String("order_id", id), slog.Any("error", err))
		return ErrCancelled
	}
	if !ok {
		return ErrCancelled
	}

	if err := d.store.Delete(ctx, id); err != nil {
		d.logger.ErrorContext(ctx, "delete order failed",
			slog.String("order_id", id), slog.Any("error", err))
		d.notifier.Notify(noticeDeleteFailed)
		return err
	}

	d.mu.Lock()
	if i := d.indexLocked(id); i >= 0 {
		d.orders = append(d.orders[:i:i], d.orders[i+1:]...)
	}
	if d.selectedID == id {
		d.selectedID = ""
	}
	d.mu.Unlock()

	d.notifier.Notify(noticeDeleted)
	return nil
}

// Snapshot is a consistent copy of the view state for rendering.
type Snapshot struct {
	Visible    []domorder.Order
	Total      int
	Filter     domorder.Filter
	SelectedID string
	Loaded     bool
	LoadErr    error
}

func (d *Desk) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Visible:    cloneOrders(d.filter.Apply(d.orders)),
		Total:      len(d.orders),
		Filter:     d.filter,
		SelectedID: d.selectedID,
		Loaded:     d.loaded,
		LoadErr:    d.loadErr,
	}
}

func (d *Desk) indexLocked(id string) int {
	for i := range d.orders {
		if d.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrders(in []domorder.Order) []domorder.Order {
	if in == nil {
		return nil
	}
	out := make([]domorder.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}
