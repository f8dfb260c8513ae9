package handler

import (
	"time"

	"nameledger/internal/registry/models"
	"nameledger/internal/registry/service"
)

// AddressResponse is the wire form of an address record.
type AddressResponse struct {
	Address    string    `json:"address"`
	ContentRef string    `json:"content_ref"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromAddressRecord converts an address record to its response form.
func FromAddressRecord(rec *models.AddressRecord) AddressResponse {
	return AddressResponse{
		Address:    rec.Address,
		ContentRef: rec.ContentRef,
		Owner:      rec.Owner,
		CreatedAt:  rec.CreatedAt,
	}
}

// DomainResponse is the wire form of a domain record.
type DomainResponse struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromDomainRecord converts a domain record to its response form.
func FromDomainRecord(rec *models.DomainRecord) DomainResponse {
	return DomainResponse{
		Name:      rec.Name,
		Address:   rec.Address,
		Owner:     rec.Owner,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// DomainViewResponse is the wire form of a resolved domain view.
type DomainViewResponse struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Owner      string `json:"owner"`
	ContentRef string `json:"content_ref"`
}

// FromDomainView converts a domain view to its response form.
func FromDomainView(view *models.DomainView) DomainViewResponse {
	return DomainViewResponse{
		Name:       view.Name,
		Address:    view.Address,
		Owner:      view.Owner,
		ContentRef: view.ContentRef,
	}
}

// ExistsResponse answers a domain existence check.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// PurchaseResponse reports a completed purchase. Refund is the token value
// returned to the buyer; zero means the payment was exact.
type PurchaseResponse struct {
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	Price  uint64 `json:"price"`
	Refund uint64 `json:"refund"`
}

// FromPurchase converts a purchase outcome to its response form.
func FromPurchase(p *service.Purchase, price uint64) PurchaseResponse {
	resp := PurchaseResponse{
		Name:  p.Domain.Name,
		Owner: p.Domain.Owner,
		Price: price,
	}
	if p.Refund != nil {
		resp.Refund = p.Refund.Value()
	}
	return resp
}

// OwnerDomainsResponse lists the domains held by one owner, keyed by name.
type OwnerDomainsResponse struct {
	Owner   string            `json:"owner"`
	Domains map[string]string `json:"domains"`
}

// BalanceResponse reports the accumulated fee balance.
type BalanceResponse struct {
	Balance uint64 `json:"balance"`
}

// WithdrawalResponse reports a completed fee withdrawal.
type WithdrawalResponse struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
	Balance   uint64 `json:"balance"`
}

// FromWithdrawal converts a withdrawal outcome to its response form.
func FromWithdrawal(w *service.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		Amount:    w.Token.Value(),
		Recipient: w.Recipient,
		Balance:   w.Balance,
	}
}
