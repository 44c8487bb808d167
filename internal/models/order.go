package models

import "time"

const (
	OrderPending   = "pending"
	OrderCancelled = "cancelled"
)

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"` // Price at the time of order
}

// Order represents a customer order.
type Order struct {
	ID          string      `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string      `json:"userId" bson:"userId" gorm:"index;type:varchar(36)"`
	Items       []OrderItem `json:"items" bson:"items" gorm:"serializer:json"`
	TotalAmount float64     `json:"totalAmount" bson:"totalAmount"`
	Status      string      `json:"status" bson:"status" gorm:"type:varchar(16)"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}
