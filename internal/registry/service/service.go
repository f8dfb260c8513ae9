// Package service implements the registry operation layer: it validates
// preconditions against the address and domain stores, applies mutations
// inside a transaction boundary, and emits notifications on success.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	registrymetrics "nameledger/internal/registry/metrics"
	"nameledger/internal/registry/models"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
	"nameledger/pkg/requestcontext"
)

// AddressStore is the address registry persistence contract. Addresses are
// write-once, so the contract has no update or delete.
type AddressStore interface {
	Create(ctx context.Context, rec *models.AddressRecord) error
	Find(ctx context.Context, address string) (*models.AddressRecord, error)
}

// DomainStore is the domain registry persistence contract, including the
// escrowed fee balance the domain registry owns.
type DomainStore interface {
	Create(ctx context.Context, rec *models.DomainRecord) error
	Find(ctx context.Context, name string) (*models.DomainRecord, error)
	Update(ctx context.Context, rec *models.DomainRecord) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	ListByOwner(ctx context.Context, owner string) (map[string]string, error)
	AddFees(ctx context.Context, amount uint64) error
	DeductFees(ctx context.Context, amount uint64) error
	FeeBalance(ctx context.Context) (uint64, error)
}

// Notifier records registry events for external listeners. Implementations
// joining the ambient transaction commit the event together with the state
// change it describes.
type Notifier interface {
	Emit(ctx context.Context, event models.Event) error
}

// DefaultDomainPrice is the fixed purchase price used when none is
// configured. The price is registry-wide; there is no per-domain pricing.
const DefaultDomainPrice uint64 = 500

// Service orchestrates the registry operations over both stores.
type Service struct {
	addresses AddressStore
	domains   DomainStore
	notifier  Notifier
	tx        RegistryTx
	price     uint64
	logger    *slog.Logger
	metrics   *registrymetrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx installs the transaction boundary. Postgres deployments bind one
// around *sql.DB; without this option mutations serialize behind a mutex.
func WithTx(tx RegistryTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithPrice overrides the fixed domain purchase price.
func WithPrice(price uint64) Option {
	return func(s *Service) {
		s.price = price
	}
}

// New constructs a Service.
func New(addresses AddressStore, domains DomainStore, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		addresses: addresses,
		domains:   domains,
		notifier:  notifier,
		price:     DefaultDomainPrice,
		logger:    slog.Default(),
		tracer:    otel.Tracer("nameledger/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewMemoryTx()
	}
	return s
}

// Price returns the fixed purchase price of the registry.
func (s *Service) Price() uint64 {
	return s.price
}

// callerPrincipal extracts the authenticated caller from the context.
func callerPrincipal(ctx context.Context) (string, error) {
	principal := requestcontext.Principal(ctx)
	if principal == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller principal is required")
	}
	return principal, nil
}

// invariantToValidation converts constructor invariant failures on caller
// input into validation errors for the API response.
func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func wrapAddressErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "address not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeAlreadyExists, "address already allotted")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "address registry failure")
	}
}

func wrapDomainErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "domain not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeAlreadyExists, "domain already registered")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "domain registry failure")
	}
}

// emit records an event through the notifier, surfacing failures as internal
// errors so the enclosing transaction aborts with the state change.
func (s *Service) emit(ctx context.Context, event models.Event) error {
	if err := s.notifier.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record notification")
	}
	return nil
}

// endSpan records err on the span, if any, before ending it.
func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
