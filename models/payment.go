package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentPending = "pending"
	PaymentSettled = "settled"
)

// Payment records a completed transaction. Status is empty on payments
// written before settlement tracking, which count as settled.
type Payment struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Price         float64            `json:"price" bson:"price"`
	TransactionID string             `json:"transactionId" bson:"transactionId"`
	UserEmail     string             `json:"userEmail" bson:"userEmail"`
	ClassesID     []string           `json:"classesId" bson:"classesId"`
	Date          time.Time          `json:"date" bson:"date"`
	Status        string             `json:"status,omitempty" bson:"status,omitempty"`
}

// Pending reports whether a settlement claimed the transaction but did not finish.
func (p *Payment) Pending() bool {
	return p.Status == PaymentPending
}

// PaymentInput is the settlement payload.
type PaymentInput struct {
	Price         LooseNumber `json:"price"`
	TransactionID string      `json:"transactionId"`
	UserEmail     string      `json:"userEmail"`
	ClassesID     []string    `json:"classesId"`
	Date          *time.Time  `json:"date,omitempty"`
}

// Enrollment covers every class bought in one checkout.
type Enrollment struct {
	ID            primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserEmail     string               `json:"userEmail" bson:"userEmail"`
	ClassesID     []primitive.ObjectID `json:"classesId" bson:"classesId"`
	TransactionID string               `json:"transactionId" bson:"transactionId"`
}

// SettlementResult aggregates the raw acknowledgements of a settlement.
type SettlementResult struct {
	PaymentResult  InsertResult `json:"paymentResult"`
	DeletedResult  DeleteResult `json:"deletedResult"`
	EnrolledResult InsertResult `json:"enrolledResult"`
	UpdatedResult  UpdateResult `json:"updatedResult"`
	Replayed       bool         `json:"replayed,omitempty"`
	Resumed        bool         `json:"resumed,omitempty"`
}
