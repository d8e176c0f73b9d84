package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "supermarket/backend/internal/domain/product"
	"supermarket/backend/internal/logging"
	"supermarket/backend/internal/telemetry"

	"github.com/google/uuid"
)

// Operation names used in logs and metrics.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Service executes validated catalog transitions against a repository. It
// owns no catalog state; the repository is the single authority on
// uniqueness.
type Service struct {
	repo    domain.Repository
	metrics *telemetry.Metrics
	nowFunc func() time.Time
	idFunc  func() string
}

// NewService constructs a product service. metrics may be nil.
func NewService(repo domain.Repository, metrics *telemetry.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		nowFunc: time.Now,
		idFunc:  uuid.NewString,
	}
}

// Create validates payload and stores a new product.
func (s *Service) Create(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	draft, rej := domain.Validate(payload)
	if rej != nil {
		return nil, s.finish(ctx, opCreate, "", rej)
	}

	now := s.now()
	product := &domain.Product{
		ID:        s.idFunc(),
		CreatedAt: now,
	}
	product.Apply(draft, now)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, s.finish(ctx, opCreate, product.ID, err)
	}
	_ = s.finish(ctx, opCreate, product.ID, nil)
	s.metrics.AddProducts(1)
	return product, nil
}

// List retrieves all products, newest first. An empty catalog yields an
// empty, non-nil slice.
func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []*domain.Product{}
	}
	s.metrics.SetProducts(len(items))
	return items, nil
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update replaces every mutable field of the product with id. A missing
// product is reported before any validation failure.
func (s *Service) Update(ctx context.Context, id string, payload domain.Payload) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, s.finish(ctx, opUpdate, id, domain.ErrNotFound)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, opUpdate, id, err)
	}

	draft, rej := domain.Validate(payload)
	if rej != nil {
		return nil, s.finish(ctx, opUpdate, id, rej)
	}
	product.Apply(draft, s.now())

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, s.finish(ctx, opUpdate, id, err)
	}
	_ = s.finish(ctx, opUpdate, id, nil)
	return product, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.finish(ctx, opDelete, id, domain.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.finish(ctx, opDelete, id, err)
	}
	s.metrics.AddProducts(-1)
	return s.finish(ctx, opDelete, id, nil)
}

// Check validates payload and looks for name or SKU collisions in the
// current catalog without changing it. excludeID names the record being
// edited, if any. The result is a hint for forms; Create and Update repeat
// the uniqueness check atomically.
func (s *Service) Check(ctx context.Context, payload domain.Payload, excludeID string) (*domain.Rejection, error) {
	draft, rej := domain.Validate(payload)
	if rej != nil {
		return rej, nil
	}
	snapshot, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return domain.Conflicts(snapshot, draft, strings.TrimSpace(excludeID)), nil
}

// Summary aggregates stock and value figures over the whole catalog.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(items), nil
}

// now returns the current time at the microsecond precision PostgreSQL
// stores, so a created record reads back with the same timestamps.
func (s *Service) now() time.Time {
	return s.nowFunc().UTC().Truncate(time.Microsecond)
}

// finish logs and counts the outcome of a mutation and returns err so call
// sites can pass it straight through. Rejections and not-found results are
// returned unchanged; unexpected errors are wrapped with the operation name.
func (s *Service) finish(ctx context.Context, op, id string, err error) error {
	var rej *domain.Rejection
	switch {
	case err == nil:
		s.metrics.ObserveMutation(op, telemetry.OutcomeSuccess)
		logging.Info(ctx).Str("op", op).Str("productId", id).Msg("product mutation applied")
		return nil
	case errors.As(err, &rej):
		s.metrics.ObserveMutation(op, telemetry.OutcomeRejected)
		logging.Info(ctx).Str("op", op).Str("productId", id).Str("kind", string(rej.Kind)).Msg("product mutation rejected")
		return rej
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.ObserveMutation(op, telemetry.OutcomeNotFound)
		logging.Debug(ctx).Str("op", op).Str("productId", id).Msg("product not found")
		return domain.ErrNotFound
	default:
		s.metrics.ObserveMutation(op, telemetry.OutcomeError)
		logging.Error(ctx).Err(err).Str("op", op).Str("productId", id).Msg("product mutation failed")
		return fmt.Errorf("%s product: %w", op, err)
	}
}
