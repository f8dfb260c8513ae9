package service

import (
	"context"
	"errors"
	"time"

	"nameledger/internal/funds"
	"nameledger/internal/registry/models"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
	"nameledger/pkg/requestcontext"
)

// Purchase reports a completed domain purchase.
type Purchase struct {
	Domain *models.DomainRecord
	// Refund carries the payment remainder above the fixed price. It is nil
	// when the payment was exact: a zero remainder is destroyed, not refunded.
	Refund *funds.Token
}

// Withdrawal reports a completed fee withdrawal.
type Withdrawal struct {
	Recipient string
	Token     funds.Token
	// Balance is the escrow balance remaining after the withdrawal.
	Balance uint64
}

// BuyDomain transfers the domain to the caller for the fixed registry price,
// regardless of the current owner's consent. Exactly the price moves from the
// payment into the fee balance; the remainder comes back as a refund. A
// payment below the price fails and leaves ownership, balance, and payment
// untouched.
func (s *Service) BuyDomain(ctx context.Context, name string, payment *funds.Token) (purchase *Purchase, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.BuyDomain")
	defer endSpan(span, &err)

	start := time.Now()
	defer s.observePurchase(start)

	buyer, err := callerPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "payment is required")
	}
	name = models.NormalizeDomainName(name)

	var bought *models.DomainRecord
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.domains.Find(txCtx, name)
		if err != nil {
			return wrapDomainErr(err)
		}

		fee, err := payment.Split(s.price)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "payment below domain price")
			}
			return err
		}

		if err := found.TransferTo(buyer, requestcontext.Now(txCtx)); err != nil {
			return invariantToValidation(err)
		}
		if err := s.domains.Update(txCtx, found); err != nil {
			return wrapDomainErr(err)
		}
		if err := s.domains.AddFees(txCtx, fee.Value()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to collect fee")
		}
		if err := s.emit(txCtx, models.DomainPurchased{
			DomainName: found.Name,
			NewOwner:   buyer,
			Price:      s.price,
		}); err != nil {
			return err
		}
		bought = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	// An exact payment leaves a zero remainder behind, which is dropped
	// rather than refunded.
	var refund *funds.Token
	if !payment.IsZero() {
		refund = payment
	}

	s.logger.InfoContext(ctx, "domain purchased",
		"domain", name,
		"new_owner", buyer,
		"price", s.price,
	)
	s.incrementDomainPurchased()
	s.addFeesCollected(s.price)
	return &Purchase{Domain: bought, Refund: refund}, nil
}

// WithdrawFees moves amount out of the fee balance, minting a token for the
// recipient. Withdrawals carry no caller authorization; deployments that need
// access control must enforce it in front of the API.
func (s *Service) WithdrawFees(ctx context.Context, amount uint64, recipient string) (withdrawal *Withdrawal, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.WithdrawFees")
	defer endSpan(span, &err)

	if recipient == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient is required")
	}

	var balance uint64
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.domains.DeductFees(txCtx, amount); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "withdrawal exceeds fee balance")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deduct fees")
		}
		remaining, err := s.domains.FeeBalance(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read fee balance")
		}
		balance = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fees withdrawn",
		"amount", amount,
		"recipient", recipient,
	)
	s.addFeesWithdrawn(amount)
	return &Withdrawal{
		Recipient: recipient,
		Token:     funds.NewToken(amount),
		Balance:   balance,
	}, nil
}

// FeeBalance returns the current escrow balance.
func (s *Service) FeeBalance(ctx context.Context) (balance uint64, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.FeeBalance")
	defer endSpan(span, &err)

	balance, err = s.domains.FeeBalance(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read fee balance")
	}
	return balance, nil
}

func (s *Service) incrementDomainPurchased() {
	if s.metrics != nil {
		s.metrics.IncrementDomainPurchased()
	}
}

func (s *Service) addFeesCollected(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddFeesCollected(amount)
	}
}

func (s *Service) addFeesWithdrawn(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddFeesWithdrawn(amount)
	}
}

func (s *Service) observePurchase(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePurchase(start)
	}
}
