package models

import "time"

// Address is the optional delivery address of a user.
type Address struct {
	House   string `json:"house" bson:"house"`
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// IsZero reports whether no address has been recorded.
func (a Address) IsZero() bool {
	return a == Address{}
}

// User represents a customer account. Email is the login key.
type User struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	FirstName string    `json:"firstName" bson:"firstName" gorm:"type:varchar(255)"`
	LastName  string    `json:"lastName,omitempty" bson:"lastName,omitempty" gorm:"type:varchar(255)"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" gorm:"type:varchar(32)"`
	Password  string    `json:"-" bson:"password" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Address   Address   `json:"address,omitzero" bson:"address,omitempty" gorm:"embedded;embeddedPrefix:address_"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
