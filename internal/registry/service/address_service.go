package service

import (
	"context"
	"errors"

	"nameledger/internal/registry/models"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
	"nameledger/pkg/requestcontext"
)

// AllotAddress creates the record for a network address. Addresses are
// write-once: allotting an address that already has a record fails and the
// original record is left untouched. Owner defaults to the caller when empty.
func (s *Service) AllotAddress(ctx context.Context, address, contentRef, owner string) (rec *models.AddressRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.AllotAddress")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		owner = principal
	}

	candidate, err := models.NewAddressRecord(address, contentRef, owner, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.addresses.Create(txCtx, candidate); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyExists, "address already allotted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allot address")
		}
		return s.emit(txCtx, models.AddressAllotted{Address: candidate.Address, Owner: candidate.Owner})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "address allotted",
		"address", candidate.Address,
		"owner", candidate.Owner,
	)
	s.incrementAddressAllotted()
	return candidate, nil
}

// ReadAddress returns the record for an address.
func (s *Service) ReadAddress(ctx context.Context, address string) (rec *models.AddressRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.ReadAddress")
	defer endSpan(span, &err)

	if address == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "address is required")
	}

	rec, err = s.addresses.Find(ctx, address)
	if err != nil {
		return nil, wrapAddressErr(err)
	}
	return rec, nil
}

func (s *Service) incrementAddressAllotted() {
	if s.metrics != nil {
		s.metrics.IncrementAddressAllotted()
	}
}
