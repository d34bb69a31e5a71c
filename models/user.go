package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID       primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Role     Role               `json:"role,omitempty" bson:"role,omitempty"`
	Address  string             `json:"address,omitempty" bson:"address,omitempty"`
	Phone    string             `json:"phone,omitempty" bson:"phone,omitempty"`
	About    string             `json:"about,omitempty" bson:"about,omitempty"`
	PhotoURL string             `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	Gender   string             `json:"gender,omitempty" bson:"gender,omitempty"`
	Skills   []string           `json:"skills,omitempty" bson:"skills,omitempty"`
}

// UserUpdate is the admin edit payload. The new role arrives as "option".
type UserUpdate struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Option   Role     `json:"option"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	About    string   `json:"about"`
	PhotoURL string   `json:"photoUrl"`
	Skills   []string `json:"skills"`
}
