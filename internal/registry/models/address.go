package models

import (
	"time"

	dErrors "nameledger/pkg/domain-errors"
)

// AddressRecord binds a network address to its deployable content reference
// and owning principal.
//
// Invariants:
//   - Address is non-empty, at most 256 characters, and unique in the registry
//   - Owner is non-empty and at most 128 characters
//   - ContentRef may be empty (nothing deployed yet) but is capped at 512 characters
//   - Records are write-once: there is no update or delete path, and allotting
//     an address that already has a record fails
type AddressRecord struct {
	Address    string    `json:"address"`
	ContentRef string    `json:"content_ref"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAddressRecord validates invariants and builds an address record.
func NewAddressRecord(address, contentRef, owner string, now time.Time) (*AddressRecord, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if len(contentRef) > 512 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "content reference must be 512 characters or less")
	}
	return &AddressRecord{
		Address:    address,
		ContentRef: contentRef,
		Owner:      owner,
		CreatedAt:  now,
	}, nil
}
