package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var ErrBadReceiptCode = errors.New("invalid receipt code")

// ReceiptSigner signs the code printed in a receipt's QR image:
// transactionId|userEmail|signature.
type ReceiptSigner struct {
	key []byte
}

// NewReceiptSigner derives a receipt key from secret, so receipt codes never
// share a key with access tokens.
func NewReceiptSigner(secret string) *ReceiptSigner {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("smartclass receipt v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		panic(err) // hkdf only fails past 255 blocks
	}
	return &ReceiptSigner{key: key}
}

func (s *ReceiptSigner) mac(data string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (s *ReceiptSigner) Sign(transactionID, email string) string {
	data := transactionID + "|" + email
	return data + "|" + s.mac(data)
}

// Verify checks a code and returns the transaction and payer it names.
func (s *ReceiptSigner) Verify(code string) (transactionID, email string, err error) {
	i := strings.LastIndex(code, "|")
	if i < 0 {
		return "", "", ErrBadReceiptCode
	}
	data, sig := code[:i], code[i+1:]
	transactionID, email, ok := strings.Cut(data, "|")
	if !ok || transactionID == "" || email == "" {
		return "", "", ErrBadReceiptCode
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(data))) {
		return "", "", ErrBadReceiptCode
	}
	return transactionID, email, nil
}
