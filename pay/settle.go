package pay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"smartclass/db"
	"smartclass/metrics"
	"smartclass/models"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrSettlementBusy = errors.New("settlement already in progress")

// Settle records a completed checkout. It is idempotent on the transaction
// id: a repeated call after success changes nothing and reports Replayed.
//
// The payment is written first, as pending, so that the unique transactionId
// index claims the transaction before seats, enrollments or the cart are
// touched. It turns settled after the last step. A call that finds a pending
// payment resumes the remaining steps; every step is safe to run twice.
func (p *PaymentService) Settle(ctx context.Context, payer string, in models.PaymentInput, singleClassID string) (models.SettlementResult, error) {
	if _, err := db.ObjectIDs(in.ClassesID); err != nil {
		return models.SettlementResult{}, err
	}

	if p.locker != nil {
		release, ok, err := p.locker.Acquire(ctx, "settle:"+in.TransactionID, p.lockTTL)
		switch {
		case err != nil:
			p.log.Warn("settlement lock unavailable", slog.String("transaction_id", in.TransactionID), slog.Any("error", err))
		case !ok:
			return models.SettlementResult{}, ErrSettlementBusy
		default:
			defer release()
		}
	}

	var (
		payment *models.Payment
		resumed bool
	)
	existing, err := p.ledger.PaymentByTransaction(ctx, in.TransactionID)
	switch {
	case err == nil && !existing.Pending():
		return replayOf(existing), nil
	case err == nil:
		p.log.Info("resuming settlement", slog.String("transaction_id", in.TransactionID))
		payment, resumed = existing, true
	case !errors.Is(err, models.ErrNotFound):
		return models.SettlementResult{}, err
	default:
		date := p.now().UTC()
		if in.Date != nil {
			date = *in.Date
		}
		payment = &models.Payment{
			Price:         in.Price.Value,
			TransactionID: in.TransactionID,
			UserEmail:     payer,
			ClassesID:     in.ClassesID,
			Date:          date,
			Status:        models.PaymentPending,
		}
	}

	// A resumed settlement finishes what the first call recorded.
	ids, err := db.ObjectIDs(payment.ClassesID)
	if err != nil {
		return models.SettlementResult{}, err
	}
	classes, err := p.ledger.Classes(ctx, ids)
	if err != nil {
		return models.SettlementResult{}, err
	}
	if len(classes) < distinct(ids) {
		return models.SettlementResult{}, fmt.Errorf("%w: one or more classes", models.ErrNotFound)
	}
	sel := CartSelector{UserMail: payment.UserEmail, ClassID: singleClassID, ClassIDs: payment.ClassesID}

	res := models.SettlementResult{Resumed: resumed}
	err = p.ledger.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		if resumed {
			res.PaymentResult = models.InsertResult{Acknowledged: true, InsertedID: payment.ID}
		} else if res.PaymentResult, err = p.ledger.InsertPayment(ctx, payment); err != nil {
			return err
		}
		if res.UpdatedResult, err = p.ledger.Enroll(ctx, ids, payment.TransactionID); err != nil {
			return err
		}
		if res.EnrolledResult, err = p.ledger.InsertEnrollment(ctx, &models.Enrollment{
			UserEmail:     payment.UserEmail,
			ClassesID:     ids,
			TransactionID: payment.TransactionID,
		}); err != nil {
			return err
		}
		if res.DeletedResult, err = p.ledger.ClearCart(ctx, sel); err != nil {
			return err
		}
		return p.ledger.MarkSettled(ctx, payment.TransactionID)
	})
	if errors.Is(err, models.ErrDuplicate) {
		// Lost a race with a concurrent settlement of the same transaction.
		return p.afterLostRace(ctx, in.TransactionID)
	}
	if err != nil {
		return models.SettlementResult{}, err
	}

	for _, c := range classes {
		if !resumed && c.AvailableSeats-1 < 0 {
			p.log.Warn("class oversold",
				slog.String("class_id", c.ID.Hex()),
				slog.Int("available_seats", c.AvailableSeats-1))
		}
	}
	return res, nil
}

// afterLostRace reports a replay once the winning settlement has finished,
// and busy while it is still running.
func (p *PaymentService) afterLostRace(ctx context.Context, transactionID string) (models.SettlementResult, error) {
	winner, err := p.ledger.PaymentByTransaction(ctx, transactionID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.SettlementResult{Replayed: true}, nil
	case err != nil:
		return models.SettlementResult{}, err
	case winner.Pending():
		return models.SettlementResult{}, ErrSettlementBusy
	}
	return replayOf(winner), nil
}

func replayOf(existing *models.Payment) models.SettlementResult {
	return models.SettlementResult{
		PaymentResult: models.InsertResult{Acknowledged: true, InsertedID: existing.ID},
		Replayed:      true,
	}
}

func distinct(ids []primitive.ObjectID) int {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// PaymentInfo settles a checkout after the provider confirmed the payment.
// ?classId= narrows cart clearing to a single class.
func (p *PaymentService) PaymentInfo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	var in models.PaymentInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if in.TransactionID == "" || len(in.ClassesID) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "transactionId and classesId are required")
		return
	}

	payer := in.UserEmail
	if payer == "" {
		payer = utils.GetEmailFromRequest(r)
	}
	allowed, err := p.actingFor(r, payer)
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "resolve role", err)
		return
	}
	if !allowed {
		utils.RespondWithError(w, http.StatusForbidden, "unauthorized role")
		return
	}

	res, err := p.Settle(ctx, payer, in, r.URL.Query().Get("classId"))
	switch {
	case errors.Is(err, ErrSettlementBusy):
		metrics.Settlements.WithLabelValues("busy").Inc()
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		metrics.Settlements.WithLabelValues("failed").Inc()
		utils.RespondWithStoreError(w, p.log, "settle payment", err)
		return
	}

	if res.Replayed {
		metrics.Settlements.WithLabelValues("replayed").Inc()
		p.log.Info("settlement replayed", slog.String("transaction_id", in.TransactionID))
	} else {
		metrics.Settlements.WithLabelValues("settled").Inc()
		p.events.Emit(ctx, models.EventPaymentSettled, in.TransactionID, payer, utils.M{
			"classesId": in.ClassesID,
			"price":     in.Price.Value,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}
