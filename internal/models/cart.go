package models

import "time"

// CartItem associates a user with a product and a quantity. The pair
// (UserID, ProductID) is unique, and Quantity is always at least one.
type CartItem struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" bson:"userId" gorm:"uniqueIndex:idx_cart_user_product;type:varchar(36)"`
	ProductID string    `json:"productId" bson:"productId" gorm:"uniqueIndex:idx_cart_user_product;type:varchar(36)"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
