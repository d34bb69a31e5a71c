package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ClassStatus string

const (
	StatusPending  ClassStatus = "pending"
	StatusApproved ClassStatus = "approved"
	StatusDenied   ClassStatus = "denied"
)

func (s ClassStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

type Class struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	Image           string             `json:"image,omitempty" bson:"image,omitempty"`
	Price           float64            `json:"price" bson:"price"`
	AvailableSeats  int                `json:"availableSeats" bson:"availableSeats"`
	VideoLink       string             `json:"videoLink,omitempty" bson:"videoLink,omitempty"`
	TotalEnrolled   int                `json:"totalEnrolled" bson:"totalEnrolled"`
	InstructorName  string             `json:"instructorName,omitempty" bson:"instructorName,omitempty"`
	InstructorEmail string             `json:"instructorEmail" bson:"instructorEmail"`
	Status          ClassStatus        `json:"status" bson:"status"`
	Reason          string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Submitted       string             `json:"submitted,omitempty" bson:"submitted,omitempty"`
}

// ClassInput is the create/update payload. Seats may arrive as a number or a numeric string.
type ClassInput struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	Price           LooseNumber `json:"price"`
	AvailableSeats  LooseInt    `json:"availableSeats"`
	VideoLink       string      `json:"videoLink"`
	InstructorName  string      `json:"instructorName"`
	InstructorEmail string      `json:"instructorEmail"`
	Status          ClassStatus `json:"status"`
	Submitted       string      `json:"submitted"`
}

// StatusChange is the admin moderation payload.
type StatusChange struct {
	Status ClassStatus `json:"status"`
	Reason string      `json:"reason"`
}
