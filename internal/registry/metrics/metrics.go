package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks record lifecycle counts, escrow value flow, and the durations of
// the write paths.
type Metrics struct {
	AddressesAllotted  prometheus.Counter
	DomainsCreated     prometheus.Counter
	DomainsPurchased   prometheus.Counter
	DomainsTransferred prometheus.Counter
	DomainsDeleted     prometheus.Counter
	FeesCollected      prometheus.Counter
	FeesWithdrawn      prometheus.Counter
	AssignDuration     prometheus.Histogram
	PurchaseDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		AddressesAllotted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_addresses_allotted_total",
			Help: "Total number of address records allotted, including implicit allotments",
		}),
		DomainsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_domains_created_total",
			Help: "Total number of domain records created",
		}),
		DomainsPurchased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_domains_purchased_total",
			Help: "Total number of domain purchases",
		}),
		DomainsTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_domains_transferred_total",
			Help: "Total number of owner-initiated domain transfers",
		}),
		DomainsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_domains_deleted_total",
			Help: "Total number of domain records deleted",
		}),
		FeesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_fees_collected_total",
			Help: "Total value collected into the fee balance by purchases",
		}),
		FeesWithdrawn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_fees_withdrawn_total",
			Help: "Total value withdrawn from the fee balance",
		}),
		AssignDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nameledger_assign_duration_seconds",
			Help:    "Duration of domain assignment operations (registration path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PurchaseDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nameledger_purchase_duration_seconds",
			Help:    "Duration of domain purchase operations (value-moving path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAddressAllotted records a successful address allotment.
func (m *Metrics) IncrementAddressAllotted() {
	m.AddressesAllotted.Inc()
}

// IncrementDomainCreated records a successful domain registration.
func (m *Metrics) IncrementDomainCreated() {
	m.DomainsCreated.Inc()
}

// IncrementDomainPurchased records a successful purchase.
func (m *Metrics) IncrementDomainPurchased() {
	m.DomainsPurchased.Inc()
}

// IncrementDomainTransferred records a successful owner-initiated transfer.
func (m *Metrics) IncrementDomainTransferred() {
	m.DomainsTransferred.Inc()
}

// IncrementDomainDeleted records a successful deletion.
func (m *Metrics) IncrementDomainDeleted() {
	m.DomainsDeleted.Inc()
}

// AddFeesCollected records value collected into the fee balance.
func (m *Metrics) AddFeesCollected(amount uint64) {
	m.FeesCollected.Add(float64(amount))
}

// AddFeesWithdrawn records value withdrawn from the fee balance.
func (m *Metrics) AddFeesWithdrawn(amount uint64) {
	m.FeesWithdrawn.Add(float64(amount))
}

// ObserveAssign records the duration of a domain assignment.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAssign(start time.Time) {
	m.AssignDuration.Observe(time.Since(start).Seconds())
}

// ObservePurchase records the duration of a purchase.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePurchase(start time.Time) {
	m.PurchaseDuration.Observe(time.Since(start).Seconds())
}
