package models

// EventType identifies a registry notification on the wire.
type EventType string

const (
	EventTypeAddressAllotted EventType = "address_allotted"
	EventTypeDomainAssigned  EventType = "domain_assigned"
	EventTypeDomainPurchased EventType = "domain_purchased"
)

// Event is a notification describing a successful registry state change.
// Events are append-only and consumed by external listeners; the registry
// never reads them back.
type Event interface {
	// Type returns the wire identifier of the event.
	Type() EventType
	// Key returns the entity key the event concerns, used as the partition
	// key so listeners see changes to one entity in order.
	Key() string
}

// AddressAllotted is emitted when an address record is created, whether
// explicitly or as a side effect of a domain assignment.
type AddressAllotted struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
}

func (AddressAllotted) Type() EventType { return EventTypeAddressAllotted }

func (e AddressAllotted) Key() string { return e.Address }

// DomainAssigned is emitted when a domain record is created.
type DomainAssigned struct {
	DomainName string `json:"domain_name"`
	Address    string `json:"address"`
	Owner      string `json:"owner"`
}

func (DomainAssigned) Type() EventType { return EventTypeDomainAssigned }

func (e DomainAssigned) Key() string { return e.DomainName }

// DomainPurchased is emitted when a purchase transfers domain ownership.
// Price is the fixed amount collected into the fee balance, not the value
// of the payment token presented.
type DomainPurchased struct {
	DomainName string `json:"domain_name"`
	NewOwner   string `json:"new_owner"`
	Price      uint64 `json:"price"`
}

func (DomainPurchased) Type() EventType { return EventTypeDomainPurchased }

func (e DomainPurchased) Key() string { return e.DomainName }
