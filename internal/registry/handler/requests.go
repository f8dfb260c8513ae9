package handler

import (
	"strings"

	dErrors "nameledger/pkg/domain-errors"
)

// AllotAddressRequest is the HTTP request body for POST /addresses.
// Owner is optional and defaults to the authenticated caller.
type AllotAddressRequest struct {
	Address    string `json:"address"`
	ContentRef string `json:"content_ref"`
	Owner      string `json:"owner"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AllotAddressRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Address) > 256 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 256 characters")
	}
	if len(r.ContentRef) > 512 {
		return dErrors.New(dErrors.CodeValidation, "content_ref must be at most 512 characters")
	}
	if len(r.Owner) > 128 {
		return dErrors.New(dErrors.CodeValidation, "owner must be at most 128 characters")
	}

	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	r.ContentRef = strings.TrimSpace(r.ContentRef)
	r.Owner = strings.TrimSpace(r.Owner)

	return nil
}

// AssignDomainRequest is the HTTP request body for POST /domains.
// ContentRef only applies when the address is implicitly allotted; Owner is
// optional and defaults to the authenticated caller.
type AssignDomainRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	ContentRef string `json:"content_ref"`
	Owner      string `json:"owner"`
}

// Validate validates and normalizes the request.
func (r *AssignDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.Name) > 253 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 253 characters")
	}
	if len(r.Address) > 256 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 256 characters")
	}
	if len(r.ContentRef) > 512 {
		return dErrors.New(dErrors.CodeValidation, "content_ref must be at most 512 characters")
	}
	if len(r.Owner) > 128 {
		return dErrors.New(dErrors.CodeValidation, "owner must be at most 128 characters")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	r.ContentRef = strings.TrimSpace(r.ContentRef)
	r.Owner = strings.TrimSpace(r.Owner)

	return nil
}

// UpdateDomainRequest is the HTTP request body for PATCH /domains/{name}.
type UpdateDomainRequest struct {
	Address string `json:"address"`
}

// Validate validates and normalizes the request.
func (r *UpdateDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.Address) > 256 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 256 characters")
	}

	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}

	return nil
}

// BuyDomainRequest is the HTTP request body for POST /domains/{name}/buy.
// Payment is the token value offered for the purchase; an offer below the
// registry price is rejected with insufficient_funds rather than a
// validation error.
type BuyDomainRequest struct {
	Payment uint64 `json:"payment"`
}

// Validate implements the Validatable interface. A zero payment is
// structurally valid and fails later against the price.
func (r *BuyDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// TransferDomainRequest is the HTTP request body for POST /domains/{name}/transfer.
type TransferDomainRequest struct {
	NewOwner string `json:"new_owner"`
}

// Validate validates and normalizes the request.
func (r *TransferDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.NewOwner) > 128 {
		return dErrors.New(dErrors.CodeValidation, "new_owner must be at most 128 characters")
	}

	r.NewOwner = strings.TrimSpace(r.NewOwner)
	if r.NewOwner == "" {
		return dErrors.New(dErrors.CodeValidation, "new_owner is required")
	}

	return nil
}

// WithdrawFeesRequest is the HTTP request body for POST /fees/withdraw.
type WithdrawFeesRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

// Validate validates and normalizes the request.
func (r *WithdrawFeesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.Recipient) > 128 {
		return dErrors.New(dErrors.CodeValidation, "recipient must be at most 128 characters")
	}

	r.Recipient = strings.TrimSpace(r.Recipient)
	if r.Recipient == "" {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}

	return nil
}
