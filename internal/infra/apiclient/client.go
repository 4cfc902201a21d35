// Package apiclient talks to the order API on behalf of the desk.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domoperator "example.com/orderdesk/internal/domain/operator"
	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/usecase/desk"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case domorder.ErrOrderNotFound:
		return e.StatusCode == http.StatusNotFound
	case domoperator.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case domorder.ErrInvalidStatus:
		return e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

var errNotLoggedIn = errors.New("not logged in")

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

var _ desk.Store = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type Session struct {
	Token string
	Name  string
	Email string
	Role  string
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp struct {
		Token    string `json:"token"`
		Operator struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"operator"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp, false); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &Session{
		Token: resp.Token,
		Name:  resp.Operator.Name,
		Email: resp.Operator.Email,
		Role:  resp.Operator.Role,
	}, nil
}

type cartItemPayload struct {
	ProductName string `json:"productName"`
	Image       string `json:"image"`
	ImageURL    string `json:"imageUrl"`
}

type orderPayload struct {
	ID              string            `json:"_id"`
	FullName        string            `json:"fullName"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Address         string            `json:"address"`
	City            string            `json:"city"`
	ZipCode         string            `json:"zipCode"`
	TotalPrice      decimal.Decimal   `json:"totalPrice"`
	DiscountedPrice decimal.Decimal   `json:"discountedPrice"`
	OrderDate       string            `json:"orderDate"`
	OrderStatus     string            `json:"orderStatus"`
	CartItems       []cartItemPayload `json:"cartItems"`
}

func (p orderPayload) toDomain() domorder.Order {
	items := make([]domorder.CartItem, 0, len(p.CartItems))
	for _, it := range p.CartItems {
		items = append(items, domorder.CartItem{
			ProductName: it.ProductName,
			Image:       it.Image,
			ImageURL:    it.ImageURL,
		})
	}
	return domorder.Order{
		ID:              p.ID,
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		Address:         p.Address,
		City:            p.City,
		ZipCode:         p.ZipCode,
		TotalPrice:      p.TotalPrice,
		DiscountedPrice: p.DiscountedPrice,
		OrderDate:       p.OrderDate,
		Status:          domorder.Status(p.OrderStatus),
		CartItems:       items,
	}
}

func (c *Client) List(ctx context.Context) ([]domorder.Order, error) {
	var resp struct {
		Data []orderPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/orders", nil, &resp, true); err != nil {
		return nil, err
	}
	orders := make([]domorder.Order, 0, len(resp.Data))
	for _, p := range resp.Data {
		orders = append(orders, p.toDomain())
	}
	return orders, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status domorder.Status) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPatch, "/api/v1/admin/orders/"+url.PathEscape(id), body, nil, true)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/orders/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return errNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
