package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName           string             `bson:"first_name" json:"firstName"`
	LastName            string             `bson:"last_name" json:"lastName"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password" json:"-"`
	IsAdmin             bool               `bson:"is_admin" json:"isAdmin"`
	ResetPasswordToken  string             `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpiry time.Time          `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updatedAt"`
}
