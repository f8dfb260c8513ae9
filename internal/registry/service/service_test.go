package service_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AddressStore,DomainStore,Notifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"nameledger/internal/funds"
	"nameledger/internal/notify"
	"nameledger/internal/registry/models"
	"nameledger/internal/registry/service"
	addressstore "nameledger/internal/registry/store/address"
	domainstore "nameledger/internal/registry/store/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/requestcontext"
)

const testPrice uint64 = 500

type RegistryServiceSuite struct {
	suite.Suite
	addresses *addressstore.MemoryStore
	domains   *domainstore.MemoryStore
	sink      *notify.MemorySink
	svc       *service.Service
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.addresses = addressstore.NewMemory()
	s.domains = domainstore.NewMemory()
	s.sink = notify.NewMemorySink()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = service.New(s.addresses, s.domains, s.sink,
		service.WithLogger(logger),
		service.WithPrice(testPrice),
	)
}

// ctxAs returns a context authenticated as the given principal.
func (s *RegistryServiceSuite) ctxAs(principal string) context.Context {
	return requestcontext.WithPrincipal(context.Background(), principal)
}

func eventTypes(events []models.Event) []models.EventType {
	types := make([]models.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type())
	}
	return types
}

func (s *RegistryServiceSuite) TestAllotAddress() {
	ctx := s.ctxAs("alice")

	s.Run("allots and reads back", func() {
		rec, err := s.svc.AllotAddress(ctx, "192.168.1.1", "site-v1", "")
		s.Require().NoError(err)
		s.Equal("alice", rec.Owner, "owner defaults to the caller")
		s.Equal("site-v1", rec.ContentRef)

		found, err := s.svc.ReadAddress(ctx, "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("alice", found.Owner)
		s.Equal("site-v1", found.ContentRef)
	})

	s.Run("emits an allotment event", func() {
		events := s.sink.Events()
		s.Require().Len(events, 1)
		s.Equal(models.AddressAllotted{Address: "192.168.1.1", Owner: "alice"}, events[0])
	})

	s.Run("second allotment of the same address fails", func() {
		_, err := s.svc.AllotAddress(ctx, "192.168.1.1", "site-v2", "bob")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		found, err := s.svc.ReadAddress(ctx, "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("site-v1", found.ContentRef, "losing allotment must not touch the record")
	})

	s.Run("supplied owner wins over the caller", func() {
		rec, err := s.svc.AllotAddress(ctx, "192.168.1.2", "", "bob")
		s.Require().NoError(err)
		s.Equal("bob", rec.Owner)
	})

	s.Run("rejects empty address", func() {
		_, err := s.svc.AllotAddress(ctx, "", "site-v1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistryServiceSuite) TestReadAddress() {
	s.Run("unknown address is not found", func() {
		_, err := s.svc.ReadAddress(s.ctxAs("alice"), "10.0.0.1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty address is a bad request", func() {
		_, err := s.svc.ReadAddress(s.ctxAs("alice"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *RegistryServiceSuite) TestCreateDomain() {
	ctx := s.ctxAs("alice")

	s.Run("creates the domain and the address implicitly", func() {
		rec, err := s.svc.CreateDomain(ctx, "example.com", "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("example.com", rec.Name)
		s.Equal("alice", rec.Owner)

		exists, err := s.svc.CheckDomain(ctx, "example.com")
		s.Require().NoError(err)
		s.True(exists)

		addr, err := s.svc.ReadAddress(ctx, "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("alice", addr.Owner, "implicit allotment carries the domain owner")
		s.Empty(addr.ContentRef, "implicit allotment through create carries no content reference")
	})

	s.Run("emits allotment and assignment events", func() {
		s.Equal([]models.EventType{
			models.EventTypeAddressAllotted,
			models.EventTypeDomainAssigned,
		}, eventTypes(s.sink.Events()))
	})

	s.Run("second create of the same name fails and changes nothing", func() {
		s.sink.Clear()

		_, err := s.svc.CreateDomain(s.ctxAs("bob"), "example.com", "10.0.0.9")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		view, err := s.svc.ReadDomain(ctx, "example.com")
		s.Require().NoError(err)
		s.Equal("alice", view.Owner, "losing create must not touch the record")
		s.Equal("192.168.1.1", view.Address)

		_, err = s.svc.ReadAddress(ctx, "10.0.0.9")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "failed create must not allot its address")
		s.Empty(s.sink.Events(), "failed create must emit nothing")
	})

	s.Run("domain names are case-insensitive", func() {
		_, err := s.svc.CreateDomain(ctx, "Example.COM", "192.168.1.1")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		exists, err := s.svc.CheckDomain(ctx, "EXAMPLE.com")
		s.Require().NoError(err)
		s.True(exists)
	})

	s.Run("requires an authenticated caller", func() {
		_, err := s.svc.CreateDomain(context.Background(), "other.com", "192.168.1.1")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistryServiceSuite) TestAssignDomain() {
	ctx := s.ctxAs("alice")

	s.Run("assigns with a supplied owner and content reference", func() {
		rec, err := s.svc.AssignDomain(ctx, "example.com", "192.168.1.1", "site-v1", "bob")
		s.Require().NoError(err)
		s.Equal("bob", rec.Owner)

		view, err := s.svc.ReadDomain(ctx, "example.com")
		s.Require().NoError(err)
		s.Equal("bob", view.Owner)
		s.Equal("site-v1", view.ContentRef)

		addr, err := s.svc.ReadAddress(ctx, "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("bob", addr.Owner)
	})

	s.Run("reuses an existing address without re-allotting", func() {
		s.sink.Clear()

		_, err := s.svc.AssignDomain(ctx, "second.com", "192.168.1.1", "ignored-ref", "")
		s.Require().NoError(err)

		view, err := s.svc.ReadDomain(ctx, "second.com")
		s.Require().NoError(err)
		s.Equal("alice", view.Owner)
		s.Equal("site-v1", view.ContentRef, "existing allotment keeps its content reference")

		s.Equal([]models.EventType{models.EventTypeDomainAssigned}, eventTypes(s.sink.Events()),
			"no allotment event when the address already exists")
	})
}

func (s *RegistryServiceSuite) TestReadDomain() {
	ctx := s.ctxAs("alice")

	s.Run("unknown domain is not found", func() {
		_, err := s.svc.ReadDomain(ctx, "missing.com")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing address record surfaces as not found", func() {
		_, err := s.svc.CreateDomain(ctx, "example.com", "192.168.1.1")
		s.Require().NoError(err)
		_, err = s.svc.UpdateDomain(ctx, "example.com", "10.9.9.9")
		s.Require().NoError(err)

		_, err = s.svc.ReadDomain(ctx, "example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound),
			"rebinding to an unallotted address breaks resolution")
	})
}

func (s *RegistryServiceSuite) TestUpdateDomain() {
	owner := s.ctxAs("alice")

	_, err := s.svc.CreateDomain(owner, "example.com", "192.168.1.1")
	s.Require().NoError(err)
	_, err = s.svc.AllotAddress(owner, "192.168.1.2", "site-v2", "")
	s.Require().NoError(err)

	s.Run("owner rebinds the address", func() {
		rec, err := s.svc.UpdateDomain(owner, "example.com", "192.168.1.2")
		s.Require().NoError(err)
		s.Equal("192.168.1.2", rec.Address)

		view, err := s.svc.ReadDomain(owner, "example.com")
		s.Require().NoError(err)
		s.Equal("192.168.1.2", view.Address)
		s.Equal("site-v2", view.ContentRef)
	})

	s.Run("non-owner cannot rebind", func() {
		_, err := s.svc.UpdateDomain(s.ctxAs("bob"), "example.com", "10.0.0.1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))

		view, err := s.svc.ReadDomain(owner, "example.com")
		s.Require().NoError(err)
		s.Equal("192.168.1.2", view.Address, "failed update must not touch the record")
	})

	s.Run("unknown domain is not found", func() {
		_, err := s.svc.UpdateDomain(owner, "missing.com", "192.168.1.2")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects an empty address", func() {
		_, err := s.svc.UpdateDomain(owner, "example.com", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistryServiceSuite) TestCheckDomain() {
	ctx := s.ctxAs("alice")

	exists, err := s.svc.CheckDomain(ctx, "example.com")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.svc.CreateDomain(ctx, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	exists, err = s.svc.CheckDomain(ctx, "example.com")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.svc.CheckDomain(ctx, "")
	s.Require().NoError(err, "existence checks never fail")
	s.False(exists)
}

func (s *RegistryServiceSuite) TestBuyDomain() {
	seller := s.ctxAs("alice")
	buyer := s.ctxAs("bob")

	_, err := s.svc.CreateDomain(seller, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	s.Run("exact payment transfers ownership with no refund", func() {
		payment := funds.NewToken(testPrice)
		purchase, err := s.svc.BuyDomain(buyer, "example.com", &payment)
		s.Require().NoError(err)
		s.Equal("bob", purchase.Domain.Owner)
		s.Nil(purchase.Refund, "exact payment leaves nothing to refund")

		balance, err := s.svc.FeeBalance(buyer)
		s.Require().NoError(err)
		s.Equal(testPrice, balance)
	})

	s.Run("emits a purchase event", func() {
		events := s.sink.Events()
		s.Require().NotEmpty(events)
		s.Equal(models.DomainPurchased{
			DomainName: "example.com",
			NewOwner:   "bob",
			Price:      testPrice,
		}, events[len(events)-1])
	})

	s.Run("excess payment is refunded", func() {
		payment := funds.NewToken(testPrice + 150)
		purchase, err := s.svc.BuyDomain(s.ctxAs("carol"), "example.com", &payment)
		s.Require().NoError(err)
		s.Equal("carol", purchase.Domain.Owner)
		s.Require().NotNil(purchase.Refund)
		s.Equal(uint64(150), purchase.Refund.Value())

		balance, err := s.svc.FeeBalance(buyer)
		s.Require().NoError(err)
		s.Equal(2*testPrice, balance, "only the price is collected, never the excess")
	})

	s.Run("insufficient payment changes nothing", func() {
		payment := funds.NewToken(testPrice - 1)
		_, err := s.svc.BuyDomain(buyer, "example.com", &payment)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		s.Equal(testPrice-1, payment.Value(), "failed purchase must not consume the payment")

		view, err := s.svc.ReadDomain(buyer, "example.com")
		s.Require().NoError(err)
		s.Equal("carol", view.Owner, "failed purchase must not change ownership")

		balance, err := s.svc.FeeBalance(buyer)
		s.Require().NoError(err)
		s.Equal(2*testPrice, balance, "failed purchase must not change the balance")
	})

	s.Run("owner can buy their own domain", func() {
		payment := funds.NewToken(testPrice)
		purchase, err := s.svc.BuyDomain(s.ctxAs("carol"), "example.com", &payment)
		s.Require().NoError(err)
		s.Equal("carol", purchase.Domain.Owner)

		balance, err := s.svc.FeeBalance(buyer)
		s.Require().NoError(err)
		s.Equal(3*testPrice, balance, "the price is collected even from the current owner")
	})

	s.Run("unknown domain is not found", func() {
		payment := funds.NewToken(testPrice)
		_, err := s.svc.BuyDomain(buyer, "missing.com", &payment)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(testPrice, payment.Value())
	})

	s.Run("missing payment is a bad request", func() {
		_, err := s.svc.BuyDomain(buyer, "example.com", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *RegistryServiceSuite) TestTransferDomain() {
	owner := s.ctxAs("alice")

	_, err := s.svc.CreateDomain(owner, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	s.Run("owner transfers to a new owner", func() {
		rec, err := s.svc.TransferDomain(owner, "example.com", "bob")
		s.Require().NoError(err)
		s.Equal("bob", rec.Owner)
	})

	s.Run("previous owner lost authority", func() {
		_, err := s.svc.TransferDomain(owner, "example.com", "carol")
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
	})

	s.Run("unknown domain is not found", func() {
		_, err := s.svc.TransferDomain(owner, "missing.com", "bob")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("transfers emit no event", func() {
		types := eventTypes(s.sink.Events())
		s.NotContains(types, models.EventTypeDomainPurchased)
		s.Len(types, 2, "only the initial allotment and assignment are recorded")
	})
}

func (s *RegistryServiceSuite) TestDomainsByOwner() {
	alice := s.ctxAs("alice")

	_, err := s.svc.CreateDomain(alice, "one.example.com", "192.168.1.1")
	s.Require().NoError(err)
	_, err = s.svc.CreateDomain(alice, "two.example.com", "192.168.1.2")
	s.Require().NoError(err)
	_, err = s.svc.CreateDomain(s.ctxAs("bob"), "other.example.com", "192.168.1.3")
	s.Require().NoError(err)

	s.Run("returns the owner's holdings", func() {
		domains, err := s.svc.DomainsByOwner(alice, "alice")
		s.Require().NoError(err)
		s.Equal(map[string]string{
			"one.example.com": "192.168.1.1",
			"two.example.com": "192.168.1.2",
		}, domains)
	})

	s.Run("transfer moves the holding", func() {
		_, err := s.svc.TransferDomain(alice, "one.example.com", "bob")
		s.Require().NoError(err)

		domains, err := s.svc.DomainsByOwner(alice, "bob")
		s.Require().NoError(err)
		s.Len(domains, 2)
		s.Contains(domains, "one.example.com")
	})

	s.Run("owner with no holdings gets an empty set", func() {
		domains, err := s.svc.DomainsByOwner(alice, "nobody")
		s.Require().NoError(err)
		s.Empty(domains)
	})

	s.Run("empty owner is a bad request", func() {
		_, err := s.svc.DomainsByOwner(alice, "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *RegistryServiceSuite) TestDeleteDomain() {
	owner := s.ctxAs("alice")

	_, err := s.svc.CreateDomain(owner, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	s.Run("non-owner cannot delete", func() {
		err := s.svc.DeleteDomain(s.ctxAs("bob"), "example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
	})

	s.Run("owner deletes the domain", func() {
		s.Require().NoError(s.svc.DeleteDomain(owner, "example.com"))

		exists, err := s.svc.CheckDomain(owner, "example.com")
		s.Require().NoError(err)
		s.False(exists)

		domains, err := s.svc.DomainsByOwner(owner, "alice")
		s.Require().NoError(err)
		s.Empty(domains)
	})

	s.Run("the address record is left in place", func() {
		addr, err := s.svc.ReadAddress(owner, "192.168.1.1")
		s.Require().NoError(err)
		s.Equal("alice", addr.Owner)
	})

	s.Run("deleting again is not found", func() {
		err := s.svc.DeleteDomain(owner, "example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RegistryServiceSuite) TestWithdrawFees() {
	buyer := s.ctxAs("bob")

	_, err := s.svc.CreateDomain(s.ctxAs("alice"), "example.com", "192.168.1.1")
	s.Require().NoError(err)
	payment := funds.NewToken(testPrice)
	_, err = s.svc.BuyDomain(buyer, "example.com", &payment)
	s.Require().NoError(err)

	s.Run("withdrawal within the balance succeeds", func() {
		withdrawal, err := s.svc.WithdrawFees(buyer, 200, "treasury")
		s.Require().NoError(err)
		s.Equal(uint64(200), withdrawal.Token.Value())
		s.Equal("treasury", withdrawal.Recipient)
		s.Equal(testPrice-200, withdrawal.Balance)
	})

	s.Run("withdrawal beyond the balance fails and changes nothing", func() {
		_, err := s.svc.WithdrawFees(buyer, testPrice-200+1, "treasury")
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		balance, err := s.svc.FeeBalance(buyer)
		s.Require().NoError(err)
		s.Equal(testPrice-200, balance)
	})

	s.Run("any caller may withdraw", func() {
		// Withdrawals carry no authorization check.
		withdrawal, err := s.svc.WithdrawFees(s.ctxAs("mallory"), 100, "mallory")
		s.Require().NoError(err)
		s.Equal(uint64(100), withdrawal.Token.Value())
	})

	s.Run("empty recipient is rejected", func() {
		_, err := s.svc.WithdrawFees(buyer, 1, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestRegistrationLifecycle walks one domain through its full life: register,
// resolve, rebind, authorization failure, delete.
func (s *RegistryServiceSuite) TestRegistrationLifecycle() {
	user1 := s.ctxAs("USER1")
	user2 := s.ctxAs("USER2")

	_, err := s.svc.AllotAddress(user1, "192.168.1.1", "content-ref", "")
	s.Require().NoError(err)
	_, err = s.svc.AllotAddress(user1, "192.168.1.2", "content-ref-2", "")
	s.Require().NoError(err)

	_, err = s.svc.CreateDomain(user1, "example.com", "192.168.1.1")
	s.Require().NoError(err)

	view, err := s.svc.ReadDomain(user1, "example.com")
	s.Require().NoError(err)
	s.Equal("USER1", view.Owner)
	s.Equal("content-ref", view.ContentRef)

	_, err = s.svc.UpdateDomain(user2, "example.com", "192.168.1.2")
	s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))

	_, err = s.svc.UpdateDomain(user1, "example.com", "192.168.1.2")
	s.Require().NoError(err)

	view, err = s.svc.ReadDomain(user1, "example.com")
	s.Require().NoError(err)
	s.Equal("192.168.1.2", view.Address)
	s.Equal("content-ref-2", view.ContentRef)

	s.Require().NoError(s.svc.DeleteDomain(user1, "example.com"))

	domains, err := s.svc.DomainsByOwner(user1, "USER1")
	s.Require().NoError(err)
	s.Empty(domains)
}
