package domain

import "time"

// User is the resource owner. The grant engine references users by ID only
// and never mutates them; credential verification goes through UserRepository
// plus bcrypt comparison in the user service.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
