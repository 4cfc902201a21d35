package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domoperator "example.com/orderdesk/internal/domain/operator"
	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/infra/directory"
	"example.com/orderdesk/internal/infra/imageurl"
	"example.com/orderdesk/internal/infra/security"
	httpapi "example.com/orderdesk/internal/interface/http"
	authuc "example.com/orderdesk/internal/usecase/auth"
	"example.com/orderdesk/internal/usecase/desk"
	orderuc "example.com/orderdesk/internal/usecase/order"
)

type memoryRepo struct {
	mu     sync.Mutex
	ids    []string
	orders map[string]domorder.Order
}

func newMemoryRepo(orders ...domorder.Order) *memoryRepo {
	r := &memoryRepo{orders: make(map[string]domorder.Order)}
	for _, o := range orders {
		r.ids = append(r.ids, o.ID)
		r.orders[o.ID] = o
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context) ([]*domorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domorder.Order
	for _, id := range r.ids {
		if o, ok := r.orders[id]; ok {
			c := o.Clone()
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	c := o.Clone()
	return &c, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	r.mu.Lock()
	o, ok := r.orders[id]
	if ok {
		o.Status = status
		r.orders[id] = o
	}
	r.mu.Unlock()
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domorder.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T) (*httptest.Server, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo(
		domorder.Order{
			ID:         "1",
			FullName:   "Jane Roe",
			Status:     domorder.StatusPending,
			TotalPrice: decimal.RequireFromString("19.99"),
			CartItems:  []domorder.CartItem{{ProductName: "Mug", Image: "image-mug-10x10-png"}},
		},
		domorder.Order{ID: "2", FullName: "John Doe", Status: domorder.StatusDelivered},
	)
	hasher := security.NewBcryptService(4)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)
	tokens := security.NewJWTService("secret", time.Hour)

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService: authuc.NewService(
			directory.NewOperators(domoperator.Operator{
				ID: "op", Name: "Ops", Email: "ops@example.com",
				Role: domoperator.RoleAdmin, PasswordHash: hash,
			}),
			hasher, tokens,
		),
		OrderService:  orderuc.NewService(repo, orderuc.WithLogger(quiet())),
		TokenService:  tokens,
		ImageResolver: imageurl.NewResolver("https://cdn.example.com", "", ""),
		Logger:        quiet(),
		LoginRate:     100,
		LoginBurst:    100,
	})
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return srv, repo
}

func loggedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "ops@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, "ADMIN", sess.Role)
	return c
}

func TestClient_LoginAndList(t *testing.T) {
	srv, _ := startServer(t)
	c := loggedIn(t, srv)

	orders, err := c.List(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "Jane Roe", orders[0].FullName)
	require.True(t, decimal.RequireFromString("19.99").Equal(orders[0].TotalPrice))
	require.Equal(t, "https://cdn.example.com/mug-10x10.png", orders[0].CartItems[0].ImageURL)
}

func TestClient_LoginFailure(t *testing.T) {
	srv, _ := startServer(t)
	c := New(srv.URL, 5*time.Second)

	_, err := c.Login(context.Background(), "ops@example.com", "password2")

	require.ErrorIs(t, err, domoperator.ErrUnauthorized)
	require.Empty(t, c.Token())
}

func TestClient_RequiresLogin(t *testing.T) {
	srv, _ := startServer(t)
	c := New(srv.URL, 5*time.Second)

	_, err := c.List(context.Background())

	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestClient_ExpiredTokenIsUnauthorized(t *testing.T) {
	srv, _ := startServer(t)
	c := New(srv.URL, 5*time.Second)
	c.SetToken("garbage")

	_, err := c.List(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.ErrorIs(t, err, domoperator.ErrUnauthorized)
}

func TestClient_UpdateStatusAndDelete(t *testing.T) {
	srv, repo := startServer(t)
	c := loggedIn(t, srv)

	require.NoError(t, c.UpdateStatus(context.Background(), "2", domorder.StatusCancelled))
	require.Equal(t, domorder.StatusCancelled, repo.orders["2"].Status)

	require.NoError(t, c.Delete(context.Background(), "1"))
	_, exists := repo.orders["1"]
	require.False(t, exists)

	err := c.Delete(context.Background(), "1")
	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
}

func TestClient_InvalidStatus(t *testing.T) {
	srv, _ := startServer(t)
	c := loggedIn(t, srv)

	err := c.UpdateStatus(context.Background(), "1", "shipped")

	require.ErrorIs(t, err, domorder.ErrInvalidStatus)
	require.ErrorContains(t, err, "invalid order status")
}

func TestDeskOverAPI_Scenarios(t *testing.T) {
	srv, _ := startServer(t)
	c := loggedIn(t, srv)
	d := desk.New(c, desk.WithLogger(quiet()))
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	require.NoError(t, d.SetFilter(domorder.Filter(domorder.StatusPending)))
	visible := d.Visible()
	require.Len(t, visible, 1)
	require.Equal(t, "1", visible[0].ID)

	require.NoError(t, d.UpdateStatus(ctx, "2", domorder.StatusCancelled))
	orders := d.Orders()
	require.Equal(t, domorder.StatusCancelled, orders[1].Status)
	require.Equal(t, domorder.StatusPending, orders[0].Status)

	require.NoError(t, d.Delete(ctx, "1", desk.AlwaysConfirm(true)))
	orders = d.Orders()
	require.Len(t, orders, 1)
	require.Equal(t, "2", orders[0].ID)

	require.NoError(t, d.Refresh(ctx))
	require.Equal(t, orders, d.Orders())
}
