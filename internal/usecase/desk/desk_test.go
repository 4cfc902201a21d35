package desk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domorder "example.com/orderdesk/internal/domain/order"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) List(ctx context.Context) ([]domorder.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domorder.Order)
	return orders, args.Error(1)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status domorder.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) levels() []Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Level, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Level)
	}
	return out
}

func fixtureOrders() []domorder.Order {
	return []domorder.Order{
		{
			ID:         "1",
			FullName:   "Jane Roe",
			Email:      "jane@example.com",
			Status:     domorder.StatusPending,
			TotalPrice: decimal.RequireFromString("42.00"),
			CartItems:  []domorder.CartItem{{ProductName: "Mug", Image: "image-mug-200x200-jpg"}},
		},
		{
			ID:         "2",
			FullName:   "John Doe",
			Email:      "john@example.com",
			Status:     domorder.StatusDelivered,
			TotalPrice: decimal.RequireFromString("10.50"),
		},
	}
}

func newTestDesk(t *testing.T, orders []domorder.Order) (*Desk, *mockStore, *noticeRecorder) {
	t.Helper()
	store := &mockStore{}
	rec := &noticeRecorder{}
	d := New(store,
		WithNotifier(rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if orders != nil {
		store.On("List", mock.Anything).Return(orders, nil).Once()
		require.NoError(t, d.Load(context.Background()))
	}
	return d, store, rec
}

func TestNew_Defaults(t *testing.T) {
	d, _, _ := newTestDesk(t, nil)

	snap := d.Snapshot()
	require.Equal(t, domorder.FilterAll, snap.Filter)
	require.Empty(t, snap.SelectedID)
	require.Empty(t, snap.Visible)
	require.False(t, snap.Loaded)
}

func TestLoad_ReplacesOrdersWholesale(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())

	store.On("List", mock.Anything).Return([]domorder.Order{{ID: "3", Status: domorder.StatusProcessing}}, nil).Once()
	require.NoError(t, d.Refresh(context.Background()))

	orders := d.Orders()
	require.Len(t, orders, 1)
	require.Equal(t, "3", orders[0].ID)
	require.True(t, d.Snapshot().Loaded)
}

func TestLoad_FailureKeepsPreviousOrders(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	before := d.Orders()

	store.On("List", mock.Anything).Return(nil, errors.New("timeout")).Once()
	err := d.Load(context.Background())

	require.EqualError(t, err, "timeout")
	require.Equal(t, before, d.Orders())
	require.EqualError(t, d.Snapshot().LoadErr, "timeout")
	require.Empty(t, rec.levels(), "fetch failures raise no dialog")
}

func TestLoad_FirstFailureLeavesEmpty(t *testing.T) {
	d, store, _ := newTestDesk(t, nil)
	store.On("List", mock.Anything).Return(nil, errors.New("refused")).Once()

	require.Error(t, d.Load(context.Background()))
	require.Empty(t, d.Orders())
	require.False(t, d.Snapshot().Loaded)
}

func TestLoad_SuccessClearsLoadError(t *testing.T) {
	d, store, _ := newTestDesk(t, nil)
	store.On("List", mock.Anything).Return(nil, errors.New("refused")).Once()
	store.On("List", mock.Anything).Return(fixtureOrders(), nil).Once()

	require.Error(t, d.Load(context.Background()))
	require.NoError(t, d.Load(context.Background()))
	require.NoError(t, d.Snapshot().LoadErr)
}

func TestFilter_PendingScenario(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())

	require.NoError(t, d.SetFilter(domorder.Filter(domorder.StatusPending)))
	visible := d.Visible()

	require.Len(t, visible, 1)
	require.Equal(t, "1", visible[0].ID)
}

func TestFilter_SoundAndComplete(t *testing.T) {
	orders := []domorder.Order{
		{ID: "a", Status: domorder.StatusPending},
		{ID: "b", Status: domorder.StatusProcessing},
		{ID: "c", Status: domorder.StatusPending},
		{ID: "d", Status: domorder.StatusCancelled},
		{ID: "e", Status: domorder.StatusDelivered},
	}
	d, _, _ := newTestDesk(t, orders)

	for _, s := range domorder.Statuses() {
		require.NoError(t, d.SetFilter(domorder.Filter(s)))
		visible := d.Visible()
		for _, o := range visible {
			require.Equal(t, s, o.Status)
		}
		want := 0
		for _, o := range orders {
			if o.Status == s {
				want++
			}
		}
		require.Len(t, visible, want)
	}
}

func TestFilter_HasNoSideEffects(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())
	d.Toggle("2")
	before := d.Orders()

	require.NoError(t, d.SetFilter(domorder.Filter(domorder.StatusPending)))
	first := d.Visible()
	second := d.Visible()

	require.Equal(t, first, second)
	require.Equal(t, before, d.Orders())
	require.Equal(t, "2", d.SelectedID())
}

func TestSetFilter_RejectsUnknown(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())

	err := d.SetFilter("shipped")

	require.ErrorIs(t, err, domorder.ErrInvalidFilter)
	require.Equal(t, domorder.FilterAll, d.Filter())
}

func TestToggle_SameIDTwiceRestoresSelection(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())

	d.Toggle("1")
	require.Equal(t, "1", d.SelectedID())
	d.Toggle("1")
	require.Empty(t, d.SelectedID())
}

func TestToggle_DifferentIDReplacesSelection(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())

	d.Toggle("1")
	d.Toggle("2")

	require.Equal(t, "2", d.SelectedID())
	selected, ok := d.Selected()
	require.True(t, ok)
	require.Equal(t, "John Doe", selected.FullName)
}

func TestUpdateStatus_SuccessPatchesOnlyTarget(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	store.On("UpdateStatus", mock.Anything, "2", domorder.StatusCancelled).Return(nil).Once()
	before := d.Orders()

	err := d.UpdateStatus(context.Background(), "2", domorder.StatusCancelled)

	require.NoError(t, err)
	after := d.Orders()
	require.Len(t, after, 2)
	require.Equal(t, before[0], after[0])
	require.Equal(t, domorder.StatusCancelled, after[1].Status)
	expected := before[1]
	expected.Status = domorder.StatusCancelled
	require.Equal(t, expected, after[1])
	require.Equal(t, []Level{LevelSuccess}, rec.levels())
	store.AssertExpectations(t)
}

func TestUpdateStatus_FailureLeavesOrdersUnchanged(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	store.On("UpdateStatus", mock.Anything, "1", domorder.StatusDelivered).Return(errors.New("boom")).Once()
	before := d.Orders()

	err := d.UpdateStatus(context.Background(), "1", domorder.StatusDelivered)

	require.EqualError(t, err, "boom")
	require.Equal(t, before, d.Orders())
	require.Equal(t, []Level{LevelError}, rec.levels())
}

func TestUpdateStatus_InvalidStatusNeverReachesStore(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())

	err := d.UpdateStatus(context.Background(), "1", "shipped")

	require.ErrorIs(t, err, domorder.ErrInvalidStatus)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	require.Equal(t, []Level{LevelError}, rec.levels())
}

func TestUpdateStatus_KeepsExpandedPanel(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	store.On("UpdateStatus", mock.Anything, "1", domorder.StatusProcessing).Return(nil).Once()
	d.Toggle("1")

	require.NoError(t, d.UpdateStatus(context.Background(), "1", domorder.StatusProcessing))

	selected, ok := d.Selected()
	require.True(t, ok)
	require.Equal(t, domorder.StatusProcessing, selected.Status)
}

func TestDelete_ConfirmedSuccessRemovesOrder(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	store.On("Delete", mock.Anything, "1").Return(nil).Once()

	err := d.Delete(context.Background(), "1", AlwaysConfirm(true))

	require.NoError(t, err)
	after := d.Orders()
	require.Len(t, after, 1)
	require.Equal(t, "2", after[0].ID)
	require.Equal(t, []Level{LevelSuccess}, rec.levels())
}

func TestDelete_CancelIssuesNoRequest(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	before := d.Orders()

	err := d.Delete(context.Background(), "1", AlwaysConfirm(false))

	require.ErrorIs(t, err, ErrCancelled)
	require.Equal(t, before, d.Orders())
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	require.Empty(t, rec.levels())
}

func TestDelete_ConfirmErrorCountsAsCancel(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	confirm := ConfirmFunc(func(ctx context.Context, p Prompt) (bool, error) {
		return true, context.Canceled
	})

	err := d.Delete(context.Background(), "1", confirm)

	require.ErrorIs(t, err, ErrCancelled)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	require.Len(t, d.Orders(), 2)
}

func TestDelete_PromptContents(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	var got Prompt
	confirm := ConfirmFunc(func(ctx context.Context, p Prompt) (bool, error) {
		got = p
		return false, nil
	})

	_ = d.Delete(context.Background(), "1", confirm)

	require.Equal(t, "Are you sure?", got.Title)
	require.Equal(t, IconWarning, got.Icon)
	require.NotEmpty(t, got.ConfirmLabel)
	require.NotEmpty(t, got.CancelLabel)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	d, store, rec := newTestDesk(t, fixtureOrders())
	store.On("Delete", mock.Anything, "2").Return(errors.New("forbidden")).Once()
	before := d.Orders()

	err := d.Delete(context.Background(), "2", AlwaysConfirm(true))

	require.EqualError(t, err, "forbidden")
	require.Equal(t, before, d.Orders())
	require.Equal(t, []Level{LevelError}, rec.levels())
}

func TestDelete_CollapsesDeletedExpandedOrder(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	store.On("Delete", mock.Anything, "1").Return(nil).Once()
	d.Toggle("1")

	require.NoError(t, d.Delete(context.Background(), "1", AlwaysConfirm(true)))

	require.Empty(t, d.SelectedID())
	_, ok := d.Selected()
	require.False(t, ok)
}

func TestDelete_OtherExpandedOrderStaysOpen(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	store.On("Delete", mock.Anything, "1").Return(nil).Once()
	d.Toggle("2")

	require.NoError(t, d.Delete(context.Background(), "1", AlwaysConfirm(true)))

	require.Equal(t, "2", d.SelectedID())
}

func TestConcurrentMutationsOnDifferentOrders(t *testing.T) {
	d, store, _ := newTestDesk(t, fixtureOrders())
	store.On("UpdateStatus", mock.Anything, "2", domorder.StatusCancelled).Return(nil).Once()
	store.On("Delete", mock.Anything, "1").Return(nil).Once()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = d.UpdateStatus(context.Background(), "2", domorder.StatusCancelled)
	}()
	go func() {
		defer wg.Done()
		_ = d.Delete(context.Background(), "1", AlwaysConfirm(true))
	}()
	wg.Wait()

	after := d.Orders()
	require.Len(t, after, 1)
	require.Equal(t, "2", after[0].ID)
	require.Equal(t, domorder.StatusCancelled, after[0].Status)
}

func TestSnapshot_IsACopy(t *testing.T) {
	d, _, _ := newTestDesk(t, fixtureOrders())

	snap := d.Snapshot()
	snap.Visible[0].Status = domorder.StatusCancelled
	snap.Visible[0].CartItems[0].ProductName = "changed"

	orders := d.Orders()
	require.Equal(t, domorder.StatusPending, orders[0].Status)
	require.Equal(t, "Mug", orders[0].CartItems[0].ProductName)
	require.Equal(t, 2, snap.Total)
}
