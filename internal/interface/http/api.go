package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domoperator "example.com/orderdesk/internal/domain/operator"
	domorder "example.com/orderdesk/internal/domain/order"
	authuc "example.com/orderdesk/internal/usecase/auth"
	orderuc "example.com/orderdesk/internal/usecase/order"
)

// ImageResolver maps an image reference to a renderable URL.
type ImageResolver interface {
	URL(ref string) string
}

type API struct {
	authSvc      *authuc.Service
	orderSvc     *orderuc.Service
	tokenSvc     authuc.TokenService
	images       ImageResolver
	logger       *slog.Logger
	validator    *validator.Validate
	loginLimiter *ipLimiter
	corsOrigins  []string
}

type Dependencies struct {
	AuthService   *authuc.Service
	OrderService  *orderuc.Service
	TokenService  authuc.TokenService
	ImageResolver ImageResolver
	Logger        *slog.Logger
	// LoginRate is the sustained logins per second allowed per client IP.
	LoginRate   float64
	LoginBurst  int
	CORSOrigins []string
}

type identityResolver struct{}

func (identityResolver) URL(ref string) string { return ref }

func NewAPI(deps Dependencies) *API {
	validate := validator.New()
	if deps.ImageResolver == nil {
		deps.ImageResolver = identityResolver{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.LoginRate <= 0 {
		deps.LoginRate = 0.2
	}
	if deps.LoginBurst <= 0 {
		deps.LoginBurst = 5
	}
	return &API{
		authSvc:      deps.AuthService,
		orderSvc:     deps.OrderService,
		tokenSvc:     deps.TokenService,
		images:       deps.ImageResolver,
		logger:       deps.Logger,
		validator:    validate,
		loginLimiter: newIPLimiter(deps.LoginRate, deps.LoginBurst),
		corsOrigins:  deps.CORSOrigins,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(a.loginLimiter.middleware).Post("/auth/login", a.handleLogin)

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireRoles(domoperator.RoleAdmin, domoperator.RoleSuperAdmin))

			ar.Route("/admin/orders", func(rr chi.Router) {
				rr.Get("/", a.handleListOrders)
				rr.Get("/{id}", a.handleGetOrder)
				rr.Patch("/{id}", a.handleUpdateOrderStatus)
				rr.Delete("/{id}", a.handleDeleteOrder)
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func mapOperator(op *domoperator.Operator) map[string]any {
	return map[string]any{
		"id":    op.ID,
		"name":  op.Name,
		"email": op.Email,
		"role":  op.Role,
	}
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID              string             `json:"_id"`
	FullName        string             `json:"fullName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Address         string             `json:"address"`
	City            string             `json:"city"`
	ZipCode         string             `json:"zipCode"`
	TotalPrice      decimal.Decimal    `json:"totalPrice"`
	DiscountedPrice decimal.Decimal    `json:"discountedPrice"`
	OrderDate       string             `json:"orderDate"`
	OrderStatus     string             `json:"orderStatus"`
	CartItems       []CartItemResponse `json:"cartItems"`
}

type CartItemResponse struct {
	ProductName string `json:"productName"`
	Image       string `json:"image"`
	ImageURL    string `json:"imageUrl"`
}

func (a *API) mapOrder(o *domorder.Order) OrderResponse {
	items := make([]CartItemResponse, 0, len(o.CartItems))
	for _, item := range o.CartItems {
		items = append(items, CartItemResponse{
			ProductName: item.ProductName,
			Image:       item.Image,
			ImageURL:    a.images.URL(item.Image),
		})
	}
	return OrderResponse{
		ID:              o.ID,
		FullName:        o.FullName,
		Email:           o.Email,
		Phone:           o.Phone,
		Address:         o.Address,
		City:            o.City,
		ZipCode:         o.ZipCode,
		TotalPrice:      o.TotalPrice,
		DiscountedPrice: o.DiscountedPrice,
		OrderDate:       o.OrderDate,
		OrderStatus:     string(o.Status),
		CartItems:       items,
	}
}

var errInternal = errors.New("internal server error")

func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domoperator.ErrInvalidCredential):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domoperator.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domorder.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrInvalidID):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrInvalidFilter):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		a.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", chimw.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, errInternal)
	}
}
