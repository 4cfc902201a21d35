package order

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domorder "example.com/orderdesk/internal/domain/order"
)

type Service struct {
	repo      domorder.Repository
	publisher domorder.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p domorder.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo domorder.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter domorder.Filter) ([]*domorder.Order, error) {
	if filter == "" {
		filter = domorder.FilterAll
	}
	if _, err := domorder.ParseFilter(string(filter)); err != nil {
		return nil, err
	}
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filter == domorder.FilterAll {
		return orders, nil
	}
	out := make([]*domorder.Order, 0, len(orders))
	for _, o := range orders {
		if filter.Matches(o.Status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domorder.Event{Type: domorder.EventStatusUpdated, OrderID: id, Status: status})
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, domorder.Event{Type: domorder.EventDeleted, OrderID: id})
	return nil
}

// publish never fails the mutation that triggered it.
func (s *Service) publish(ctx context.Context, evt domorder.Event) {
	if s.publisher == nil {
		return
	}
	evt.At = s.now().UTC()
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "publish order event failed",
			slog.String("type", string(evt.Type)),
			slog.String("order_id", evt.OrderID),
			slog.Any("error", err),
		)
	}
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domorder.ErrInvalidID
	}
	return id, nil
}
