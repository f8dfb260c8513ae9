package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"nameledger/internal/funds"
	"nameledger/internal/notify"
	"nameledger/internal/registry/service"
	addressstore "nameledger/internal/registry/store/address"
	domainstore "nameledger/internal/registry/store/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/requestcontext"
)

type ServiceConcurrencySuite struct {
	suite.Suite
	domains *domainstore.MemoryStore
	sink    *notify.MemorySink
	svc     *service.Service
}

func TestServiceConcurrencySuite(t *testing.T) {
	suite.Run(t, new(ServiceConcurrencySuite))
}

func (s *ServiceConcurrencySuite) SetupTest() {
	s.domains = domainstore.NewMemory()
	s.sink = notify.NewMemorySink()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = service.New(addressstore.NewMemory(), s.domains, s.sink,
		service.WithLogger(logger),
		service.WithPrice(testPrice),
	)
}

func (s *ServiceConcurrencySuite) TestConcurrentCreateSameName() {
	const workers = 50

	var (
		wg            sync.WaitGroup
		successCount  atomic.Int32
		conflictCount atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx := requestcontext.WithPrincipal(context.Background(), fmt.Sprintf("user-%d", n))
			_, err := s.svc.CreateDomain(ctx, "example.com", fmt.Sprintf("10.0.0.%d", n))
			switch {
			case err == nil:
				successCount.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAlreadyExists):
				conflictCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create must win")
	s.Equal(int32(workers-1), conflictCount.Load())
	s.Len(s.sink.Events(), 2, "only the winner may emit its allotment and assignment")
}

func (s *ServiceConcurrencySuite) TestBuyRacesTransfer() {
	alice := requestcontext.WithPrincipal(context.Background(), "alice")
	bob := requestcontext.WithPrincipal(context.Background(), "bob")

	_, err := s.svc.CreateDomain(alice, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	var (
		wg          sync.WaitGroup
		buyErr      error
		transferErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		payment := funds.NewToken(testPrice)
		_, buyErr = s.svc.BuyDomain(bob, "example.com", &payment)
	}()
	go func() {
		defer wg.Done()
		_, transferErr = s.svc.TransferDomain(alice, "example.com", "carol")
	}()
	wg.Wait()

	// A purchase succeeds against whoever owns the record at that moment, so
	// the buyer ends up as owner in either interleaving. The transfer either
	// lands first or finds alice no longer owning the domain.
	s.NoError(buyErr)
	if transferErr != nil {
		s.True(dErrors.HasCode(transferErr, dErrors.CodeNotOwner))
	}

	view, err := s.svc.ReadDomain(bob, "example.com")
	s.Require().NoError(err)
	s.Equal("bob", view.Owner)

	balance, err := s.svc.FeeBalance(bob)
	s.Require().NoError(err)
	s.Equal(testPrice, balance, "the fee is collected exactly once")
}

func (s *ServiceConcurrencySuite) TestConcurrentWithdrawals() {
	const (
		workers = 50
		amount  = uint64(20)
	)

	ctx := requestcontext.WithPrincipal(context.Background(), "treasury")
	s.Require().NoError(s.domains.AddFees(ctx, testPrice))

	var (
		wg                sync.WaitGroup
		successCount      atomic.Int32
		insufficientCount atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.WithdrawFees(ctx, amount, "treasury")
			switch {
			case err == nil:
				successCount.Add(1)
			case dErrors.HasCode(err, dErrors.CodeInsufficientFunds):
				insufficientCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(testPrice/amount), successCount.Load(),
		"withdrawals must stop exactly when the balance runs out")
	s.Equal(int32(workers)-successCount.Load(), insufficientCount.Load())

	balance, err := s.svc.FeeBalance(ctx)
	s.Require().NoError(err)
	s.Zero(balance)
}
