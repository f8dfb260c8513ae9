// Package handler exposes the registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/funds"
	"nameledger/internal/registry/models"
	"nameledger/internal/registry/service"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/requestcontext"
)

// Service defines the registry operations the handler exposes.
type Service interface {
	AllotAddress(ctx context.Context, address, contentRef, owner string) (*models.AddressRecord, error)
	ReadAddress(ctx context.Context, address string) (*models.AddressRecord, error)
	AssignDomain(ctx context.Context, name, address, contentRef, owner string) (*models.DomainRecord, error)
	ReadDomain(ctx context.Context, name string) (*models.DomainView, error)
	UpdateDomain(ctx context.Context, name, newAddress string) (*models.DomainRecord, error)
	CheckDomain(ctx context.Context, name string) (bool, error)
	BuyDomain(ctx context.Context, name string, payment *funds.Token) (*service.Purchase, error)
	TransferDomain(ctx context.Context, name, newOwner string) (*models.DomainRecord, error)
	DomainsByOwner(ctx context.Context, owner string) (map[string]string, error)
	DeleteDomain(ctx context.Context, name string) error
	WithdrawFees(ctx context.Context, amount uint64, recipient string) (*service.Withdrawal, error)
	FeeBalance(ctx context.Context) (uint64, error)
	Price() uint64
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the registry endpoints on the router. Callers mount it
// under their version prefix and are responsible for the middleware chain,
// including authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/addresses", h.HandleAllotAddress)
	r.Get("/addresses/{address}", h.HandleReadAddress)
	r.Post("/domains", h.HandleAssignDomain)
	r.Get("/domains/{name}", h.HandleReadDomain)
	r.Get("/domains/{name}/exists", h.HandleCheckDomain)
	r.Patch("/domains/{name}", h.HandleUpdateDomain)
	r.Post("/domains/{name}/buy", h.HandleBuyDomain)
	r.Post("/domains/{name}/transfer", h.HandleTransferDomain)
	r.Delete("/domains/{name}", h.HandleDeleteDomain)
	r.Get("/owners/{owner}/domains", h.HandleDomainsByOwner)
	r.Get("/fees", h.HandleFeeBalance)
	r.Post("/fees/withdraw", h.HandleWithdrawFees)
}

// respondError logs the failure and writes the mapped error response. Client
// faults log at warn, infrastructure faults at error.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	ctx := r.Context()
	args = append(args, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeTimeout) {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}

// HandleAllotAddress handles POST /addresses requests.
func (h *Handler) HandleAllotAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AllotAddressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.AllotAddress(ctx, req.Address, req.ContentRef, req.Owner)
	if err != nil {
		h.respondError(w, r, "address allotment failed", err, "address", req.Address)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromAddressRecord(rec))
}

// HandleReadAddress handles GET /addresses/{address} requests.
func (h *Handler) HandleReadAddress(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	rec, err := h.service.ReadAddress(r.Context(), address)
	if err != nil {
		h.respondError(w, r, "address read failed", err, "address", address)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromAddressRecord(rec))
}

// HandleAssignDomain handles POST /domains requests. A missing owner
// defaults to the caller; a missing content reference leaves any implicit
// allotment without one.
func (h *Handler) HandleAssignDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AssignDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.AssignDomain(ctx, req.Name, req.Address, req.ContentRef, req.Owner)
	if err != nil {
		h.respondError(w, r, "domain assignment failed", err, "name", req.Name)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromDomainRecord(rec))
}

// HandleReadDomain handles GET /domains/{name} requests.
func (h *Handler) HandleReadDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	view, err := h.service.ReadDomain(r.Context(), name)
	if err != nil {
		h.respondError(w, r, "domain read failed", err, "name", name)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDomainView(view))
}

// HandleCheckDomain handles GET /domains/{name}/exists requests. It answers
// 200 whether or not the domain exists.
func (h *Handler) HandleCheckDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	exists, err := h.service.CheckDomain(r.Context(), name)
	if err != nil {
		h.respondError(w, r, "domain check failed", err, "name", name)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

// HandleUpdateDomain handles PATCH /domains/{name} requests.
func (h *Handler) HandleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeAndPrepare[UpdateDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.UpdateDomain(ctx, name, req.Address)
	if err != nil {
		h.respondError(w, r, "domain update failed", err, "name", name)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDomainRecord(rec))
}

// HandleBuyDomain handles POST /domains/{name}/buy requests. The payment
// field carries the token value; the handler mints the token on the caller's
// behalf.
func (h *Handler) HandleBuyDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeAndPrepare[BuyDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	payment := funds.NewToken(req.Payment)
	purchase, err := h.service.BuyDomain(ctx, name, &payment)
	if err != nil {
		h.respondError(w, r, "domain purchase failed", err, "name", name)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPurchase(purchase, h.service.Price()))
}

// HandleTransferDomain handles POST /domains/{name}/transfer requests.
func (h *Handler) HandleTransferDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeAndPrepare[TransferDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.TransferDomain(ctx, name, req.NewOwner)
	if err != nil {
		h.respondError(w, r, "domain transfer failed", err, "name", name)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDomainRecord(rec))
}

// HandleDeleteDomain handles DELETE /domains/{name} requests.
func (h *Handler) HandleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.service.DeleteDomain(r.Context(), name); err != nil {
		h.respondError(w, r, "domain deletion failed", err, "name", name)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDomainsByOwner handles GET /owners/{owner}/domains requests.
func (h *Handler) HandleDomainsByOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")

	domains, err := h.service.DomainsByOwner(r.Context(), owner)
	if err != nil {
		h.respondError(w, r, "domain listing failed", err, "owner", owner)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OwnerDomainsResponse{Owner: owner, Domains: domains})
}

// HandleFeeBalance handles GET /fees requests.
func (h *Handler) HandleFeeBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.FeeBalance(r.Context())
	if err != nil {
		h.respondError(w, r, "fee balance read failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

// HandleWithdrawFees handles POST /fees/withdraw requests.
func (h *Handler) HandleWithdrawFees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[WithdrawFeesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	withdrawal, err := h.service.WithdrawFees(ctx, req.Amount, req.Recipient)
	if err != nil {
		h.respondError(w, r, "fee withdrawal failed", err, "recipient", req.Recipient)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromWithdrawal(withdrawal))
}
