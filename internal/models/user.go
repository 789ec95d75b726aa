package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// User struct matches the document in MongoDB.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role"`
	Name        string             `bson:"name" json:"name"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
