//go:build integration

package address_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"nameledger/internal/registry/models"
	"nameledger/internal/registry/store/address"
	"nameledger/pkg/platform/sentinel"
	"nameledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *address.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = address.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "address_records")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCreateFindRoundTrip() {
	ctx := context.Background()
	addr := "10.20." + uuid.NewString()

	rec, err := models.NewAddressRecord(addr, "site-v1", "alice", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, rec))

	found, err := s.store.Find(ctx, addr)
	s.Require().NoError(err)
	s.Equal(rec.Address, found.Address)
	s.Equal(rec.ContentRef, found.ContentRef)
	s.Equal(rec.Owner, found.Owner)
	s.WithinDuration(rec.CreatedAt, found.CreatedAt, time.Second)
}

// TestWriteOnce verifies that a second allotment of the same address fails
// and leaves the original record untouched.
func (s *PostgresStoreSuite) TestWriteOnce() {
	ctx := context.Background()
	addr := "10.20." + uuid.NewString()

	first, err := models.NewAddressRecord(addr, "site-v1", "alice", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, first))

	second, err := models.NewAddressRecord(addr, "site-v2", "bob", time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(ctx, second), sentinel.ErrConflict)

	found, err := s.store.Find(ctx, addr)
	s.Require().NoError(err)
	s.Equal("site-v1", found.ContentRef)
	s.Equal("alice", found.Owner)
}

func (s *PostgresStoreSuite) TestNotFoundError() {
	ctx := context.Background()

	_, err := s.store.Find(ctx, "10.99."+uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentCreateSameAddress verifies that concurrent allotments of the
// same address result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentCreateSameAddress() {
	ctx := context.Background()
	addr := "10.20." + uuid.NewString()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec, err := models.NewAddressRecord(addr, "site-v1", "alice", time.Now().UTC())
			if err != nil {
				return
			}
			err = s.store.Create(ctx, rec)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")
}
