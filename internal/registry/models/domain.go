package models

import (
	"strings"
	"time"

	dErrors "nameledger/pkg/domain-errors"
)

// NormalizeDomainName lowercases a domain name and trims surrounding
// whitespace. Stored records and lookups always use the normalized form, so
// "Example.COM" and "example.com" refer to the same registration.
func NormalizeDomainName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DomainRecord maps a registered domain name to a network address and its
// owning principal.
//
// Invariants:
//   - Name is non-empty, normalized lowercase, at most 253 characters, and
//     unique in the registry
//   - Address is non-empty and at most 256 characters; it references the
//     address registry but is not required to stay resolvable there
//   - Owner is non-empty and at most 128 characters
//   - Owner is the sole authority for rebinding, transferring, or deleting
//     the record; purchase is the one exception and replaces the owner
//     unconditionally on sufficient payment
type DomainRecord struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDomainRecord validates invariants and builds a domain record.
func NewDomainRecord(name, address, owner string, now time.Time) (*DomainRecord, error) {
	name = NormalizeDomainName(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name cannot be empty")
	}
	if len(name) > 253 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name must be 253 characters or less")
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	return &DomainRecord{
		Name:      name,
		Address:   address,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOwnedBy reports whether principal owns the record.
func (d *DomainRecord) IsOwnedBy(principal string) bool {
	return d.Owner == principal
}

// Rebind points the record at a new address.
func (d *DomainRecord) Rebind(address string, now time.Time) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	d.Address = address
	d.UpdatedAt = now
	return nil
}

// TransferTo hands the record to a new owner.
func (d *DomainRecord) TransferTo(newOwner string, now time.Time) error {
	if err := validateOwner(newOwner); err != nil {
		return err
	}
	d.Owner = newOwner
	d.UpdatedAt = now
	return nil
}

func validateAddress(address string) error {
	if address == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "address cannot be empty")
	}
	if len(address) > 256 {
		return dErrors.New(dErrors.CodeInvariantViolation, "address must be 256 characters or less")
	}
	return nil
}

func validateOwner(owner string) error {
	if owner == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "owner cannot be empty")
	}
	if len(owner) > 128 {
		return dErrors.New(dErrors.CodeInvariantViolation, "owner must be 128 characters or less")
	}
	return nil
}

// DomainView joins a domain record with the content reference resolved
// through its bound address record.
type DomainView struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Owner      string `json:"owner"`
	ContentRef string `json:"content_ref"`
}
