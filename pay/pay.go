package pay

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"smartclass/middleware"
	"smartclass/models"
	"smartclass/mq"
	"smartclass/stripe"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
)

// Locker serializes settlements of the same transaction across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// PaymentService handles payment intents, settlement and payment history.
type PaymentService struct {
	ledger   Ledger
	provider stripe.Provider
	locker   Locker
	roles    middleware.RoleLookup
	events   *mq.Emitter
	signer   *ReceiptSigner
	log      *slog.Logger

	currency string
	lockTTL  time.Duration
	timeout  time.Duration
	now      func() time.Time
}

type Options struct {
	Currency      string
	LockTTL       time.Duration
	Timeout       time.Duration
	ReceiptSecret string
}

// NewPaymentService wires the service. locker and events may be nil.
func NewPaymentService(ledger Ledger, provider stripe.Provider, locker Locker, roles middleware.RoleLookup,
	events *mq.Emitter, log *slog.Logger, opts Options) *PaymentService {
	return &PaymentService{
		ledger:   ledger,
		provider: provider,
		locker:   locker,
		roles:    roles,
		events:   events,
		signer:   NewReceiptSigner(opts.ReceiptSecret),
		log:      log,
		currency: opts.Currency,
		lockTTL:  opts.LockTTL,
		timeout:  opts.Timeout,
		now:      time.Now,
	}
}

// CreatePaymentIntent opens a card payment for the whole-unit part of price.
func (p *PaymentService) CreatePaymentIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	var body struct {
		Price models.LooseNumber `json:"price"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount := int64(math.Trunc(body.Price.Value)) * 100
	if !body.Price.Set || amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "price must be a positive number")
		return
	}

	secret, err := p.provider.CreateIntent(ctx, amount, p.currency)
	if errors.Is(err, stripe.ErrNotConfigured) {
		utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		p.log.Error("create payment intent", slog.Int64("amount", amount), slog.Any("error", err))
		utils.RespondWithError(w, http.StatusBadGateway, "payment provider error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"clientSecret": secret})
}

// PaymentHistory lists a user's payments, newest first.
func (p *PaymentService) PaymentHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	payments, err := p.ledger.History(ctx, ps.ByName("email"))
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "payment history", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}

func (p *PaymentService) PaymentHistoryLength(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	total, err := p.ledger.CountHistory(ctx, ps.ByName("email"))
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "payment history length", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"total": total})
}

// actingFor reports whether the requester may act on behalf of email.
func (p *PaymentService) actingFor(r *http.Request, email string) (bool, error) {
	if email == utils.GetEmailFromRequest(r) {
		return true, nil
	}
	role, err := middleware.RequesterRole(r, p.roles)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}
