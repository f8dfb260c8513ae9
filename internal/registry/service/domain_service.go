package service

import (
	"context"
	"errors"
	"time"

	"nameledger/internal/registry/models"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
	"nameledger/pkg/requestcontext"
)

// AssignDomain registers a domain name bound to an address for the given
// owner. When the address has no record yet it is allotted implicitly with
// the same owner and the supplied content reference, atomically with the
// domain insert. Owner defaults to the caller when empty.
func (s *Service) AssignDomain(ctx context.Context, name, address, contentRef, owner string) (rec *models.DomainRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.AssignDomain")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		owner = principal
	}
	return s.assign(ctx, name, address, contentRef, owner)
}

// CreateDomain registers a domain owned by the caller. An implicit address
// allotment carries an empty content reference; use AssignDomain to supply
// one.
func (s *Service) CreateDomain(ctx context.Context, name, address string) (rec *models.DomainRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateDomain")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return s.assign(ctx, name, address, "", principal)
}

func (s *Service) assign(ctx context.Context, name, address, contentRef, owner string) (*models.DomainRecord, error) {
	start := time.Now()
	defer s.observeAssign(start)

	candidate, err := models.NewDomainRecord(name, address, owner, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}

	var allotted *models.AddressRecord
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.domains.Exists(txCtx, candidate.Name)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check domain")
		}
		if exists {
			return dErrors.New(dErrors.CodeAlreadyExists, "domain already registered")
		}

		// Check-then-create the address before the domain insert so a failure
		// can never leave a domain pointing at a missing address.
		_, err = s.addresses.Find(txCtx, candidate.Address)
		switch {
		case err == nil:
			// address already allotted, the domain binds to it as is
		case errors.Is(err, sentinel.ErrNotFound):
			addrRec, cerr := models.NewAddressRecord(candidate.Address, contentRef, owner, requestcontext.Now(txCtx))
			if cerr != nil {
				return invariantToValidation(cerr)
			}
			cerr = s.addresses.Create(txCtx, addrRec)
			switch {
			case cerr == nil:
				allotted = addrRec
			case errors.Is(cerr, sentinel.ErrConflict):
				// lost an allotment race; the address now exists, which is
				// all the assignment needs
			default:
				return dErrors.Wrap(cerr, dErrors.CodeInternal, "failed to allot address")
			}
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve address")
		}

		if err := s.domains.Create(txCtx, candidate); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyExists, "domain already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
		}

		if allotted != nil {
			if err := s.emit(txCtx, models.AddressAllotted{Address: allotted.Address, Owner: allotted.Owner}); err != nil {
				return err
			}
		}
		return s.emit(txCtx, models.DomainAssigned{
			DomainName: candidate.Name,
			Address:    candidate.Address,
			Owner:      candidate.Owner,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain assigned",
		"domain", candidate.Name,
		"address", candidate.Address,
		"owner", candidate.Owner,
	)
	if allotted != nil {
		s.incrementAddressAllotted()
	}
	s.incrementDomainCreated()
	return candidate, nil
}

// ReadDomain returns the domain joined with the content reference resolved
// through its bound address. A missing address record surfaces as not found:
// the binding is not guaranteed to stay resolvable.
func (s *Service) ReadDomain(ctx context.Context, name string) (view *models.DomainView, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.ReadDomain")
	defer endSpan(span, &err)

	name = models.NormalizeDomainName(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "domain name is required")
	}

	rec, err := s.domains.Find(ctx, name)
	if err != nil {
		return nil, wrapDomainErr(err)
	}
	addrRec, err := s.addresses.Find(ctx, rec.Address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "address record missing for domain")
		}
		return nil, wrapAddressErr(err)
	}
	return &models.DomainView{
		Name:       rec.Name,
		Address:    rec.Address,
		Owner:      rec.Owner,
		ContentRef: addrRec.ContentRef,
	}, nil
}

// UpdateDomain rebinds the domain to a new address. Only the owner may
// rebind. The new address is not required to have an address record, so a
// later ReadDomain can fail on the missing binding.
func (s *Service) UpdateDomain(ctx context.Context, name, newAddress string) (rec *models.DomainRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.UpdateDomain")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	name = models.NormalizeDomainName(name)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.domains.Find(txCtx, name)
		if err != nil {
			return wrapDomainErr(err)
		}
		if !found.IsOwnedBy(principal) {
			return dErrors.New(dErrors.CodeNotOwner, "caller does not own the domain")
		}
		if err := found.Rebind(newAddress, requestcontext.Now(txCtx)); err != nil {
			return invariantToValidation(err)
		}
		if err := s.domains.Update(txCtx, found); err != nil {
			return wrapDomainErr(err)
		}
		rec = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain rebound",
		"domain", name,
		"address", newAddress,
	)
	return rec, nil
}

// CheckDomain reports whether the name is registered. An unregistered or
// empty name is simply false.
func (s *Service) CheckDomain(ctx context.Context, name string) (exists bool, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.CheckDomain")
	defer endSpan(span, &err)

	exists, err = s.domains.Exists(ctx, models.NormalizeDomainName(name))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check domain")
	}
	return exists, nil
}

// TransferDomain hands the domain to a new owner. Only the current owner may
// transfer; purchase is the path that changes ownership without the owner's
// consent.
func (s *Service) TransferDomain(ctx context.Context, name, newOwner string) (rec *models.DomainRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.TransferDomain")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	name = models.NormalizeDomainName(name)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.domains.Find(txCtx, name)
		if err != nil {
			return wrapDomainErr(err)
		}
		if !found.IsOwnedBy(principal) {
			return dErrors.New(dErrors.CodeNotOwner, "caller does not own the domain")
		}
		if err := found.TransferTo(newOwner, requestcontext.Now(txCtx)); err != nil {
			return invariantToValidation(err)
		}
		if err := s.domains.Update(txCtx, found); err != nil {
			return wrapDomainErr(err)
		}
		rec = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain transferred",
		"domain", name,
		"new_owner", newOwner,
	)
	s.incrementDomainTransferred()
	return rec, nil
}

// DomainsByOwner returns every domain owned by owner as a name to address
// mapping. The result is unordered and empty when the owner has none.
func (s *Service) DomainsByOwner(ctx context.Context, owner string) (domains map[string]string, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.DomainsByOwner")
	defer endSpan(span, &err)

	if owner == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	domains, err = s.domains.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains")
	}
	return domains, nil
}

// DeleteDomain removes the domain record. Only the owner may delete. The
// bound address record is left in place.
func (s *Service) DeleteDomain(ctx context.Context, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, "registry.DeleteDomain")
	defer endSpan(span, &err)

	principal, err := callerPrincipal(ctx)
	if err != nil {
		return err
	}
	name = models.NormalizeDomainName(name)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.domains.Find(txCtx, name)
		if err != nil {
			return wrapDomainErr(err)
		}
		if !found.IsOwnedBy(principal) {
			return dErrors.New(dErrors.CodeNotOwner, "caller does not own the domain")
		}
		if err := s.domains.Delete(txCtx, name); err != nil {
			return wrapDomainErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "domain deleted", "domain", name)
	s.incrementDomainDeleted()
	return nil
}

func (s *Service) incrementDomainCreated() {
	if s.metrics != nil {
		s.metrics.IncrementDomainCreated()
	}
}

func (s *Service) incrementDomainTransferred() {
	if s.metrics != nil {
		s.metrics.IncrementDomainTransferred()
	}
}

func (s *Service) incrementDomainDeleted() {
	if s.metrics != nil {
		s.metrics.IncrementDomainDeleted()
	}
}

func (s *Service) observeAssign(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAssign(start)
	}
}
