package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Application is a request to become an instructor.
type Application struct {
	ID         primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Experience string             `json:"experience,omitempty" bson:"experience,omitempty"`
}
