package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem pairs a class with the user who added it. Pairs are not unique.
type CartItem struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ClassID        string             `json:"classId" bson:"classId"`
	UserMail       string             `json:"userMail" bson:"userMail"`
	Name           string             `json:"name,omitempty" bson:"name,omitempty"`
	Image          string             `json:"image,omitempty" bson:"image,omitempty"`
	Price          float64            `json:"price,omitempty" bson:"price,omitempty"`
	InstructorName string             `json:"instructorName,omitempty" bson:"instructorName,omitempty"`
	Date           string             `json:"date,omitempty" bson:"date,omitempty"`
}
