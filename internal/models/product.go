package models

import "time"

// DefaultMimeType is assigned to products created without an uploaded image type.
const DefaultMimeType = "image/jpeg"

// ProductStatus is the lifecycle state of a catalog entry.
type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductDeleted ProductStatus = "deleted"
)

// Product represents a catalog entry. Products are never removed from storage;
// deletion moves Status to ProductDeleted and stamps DeletedAt.
type Product struct {
	ID          string        `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string        `json:"name" bson:"name" gorm:"type:varchar(255)"`
	Price       float64       `json:"price" bson:"price"`
	Description string        `json:"description" bson:"description" gorm:"type:varchar(1024)"`
	Category    string        `json:"category" bson:"category" gorm:"type:varchar(255)"`
	Image       string        `json:"image,omitempty" bson:"image,omitempty"`
	MimeType    string        `json:"mimeType" bson:"mimeType" gorm:"type:varchar(100)"`
	Tags        []string      `json:"tags" bson:"tags" gorm:"serializer:json"`
	Status      ProductStatus `json:"status" bson:"status" gorm:"index;type:varchar(16)"`
	DeletedAt   time.Time     `json:"deletedAt,omitzero" bson:"deletedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.Status == ProductDeleted
}

// MarkDeleted moves the product into the deleted state.
func (p *Product) MarkDeleted(at time.Time) {
	p.Status = ProductDeleted
	p.DeletedAt = at
}
