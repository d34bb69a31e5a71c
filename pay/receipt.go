package pay

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"smartclass/models"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// RenderReceipt draws a one-page PDF receipt with code as a QR image.
func RenderReceipt(p models.Payment, currency, code string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Smart Class Hub - Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Transaction: %s", p.TransactionID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Paid by: %s", p.UserEmail))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f %s", p.Price, strings.ToUpper(currency)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", p.Date.Format("2006-01-02 15:04 MST")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Classes: %d", len(p.ClassesID)))
	pdf.Ln(8)
	for _, id := range p.ClassesID {
		pdf.Cell(0, 8, "  "+id)
		pdf.Ln(6)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PaymentReceipt serves the receipt of a payment to its payer or an admin.
func (p *PaymentService) PaymentReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	txid := ps.ByName("transactionId")
	payment, err := p.ledger.PaymentByTransaction(ctx, txid)
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "payment receipt", err)
		return
	}
	allowed, err := p.actingFor(r, payment.UserEmail)
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "resolve role", err)
		return
	}
	if !allowed {
		utils.RespondWithError(w, http.StatusForbidden, "unauthorized role")
		return
	}

	pdf, err := RenderReceipt(*payment, p.currency, p.signer.Sign(payment.TransactionID, payment.UserEmail))
	if err != nil {
		p.log.Error("render receipt", slog.String("transaction_id", txid), slog.Any("error", err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+txid+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// VerifyReceipt checks a scanned receipt code against the ledger.
func (p *PaymentService) VerifyReceipt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	txid, email, err := p.signer.Verify(r.URL.Query().Get("code"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := p.ledger.PaymentByTransaction(ctx, txid)
	if err != nil {
		utils.RespondWithStoreError(w, p.log, "verify receipt", err)
		return
	}
	if payment.UserEmail != email {
		utils.RespondWithError(w, http.StatusBadRequest, ErrBadReceiptCode.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"valid":         true,
		"transactionId": payment.TransactionID,
		"userEmail":     payment.UserEmail,
		"price":         payment.Price,
		"classes":       len(payment.ClassesID),
		"date":          payment.Date,
	})
}
