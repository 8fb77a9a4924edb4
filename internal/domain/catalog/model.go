// Package catalog exposes the customers and products the fulfillment core reads.
// Administrative maintenance of these records happens elsewhere.
package catalog

import (
	"strings"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
)

type Customer struct {
	ID        id.ID     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Supplier struct {
	ID        id.ID     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Contact   string    `db:"contact" json:"contact,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ProductStatus is the product lifecycle flag.
type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductDiscontinued ProductStatus = "discontinued"
)

type Product struct {
	ID        id.ID         `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Category  string        `db:"category" json:"category,omitempty"`
	Unit      string        `db:"unit" json:"unit"`
	BasePrice types.Money   `db:"base_price" json:"basePrice"`
	Status    ProductStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// Validate checks the fields required to stock and sell a product.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Unit) == "" {
		return apperror.NewValidation("unit of measure is required").WithDetail("field", "unit")
	}
	if p.BasePrice.IsNegative() {
		return apperror.NewValidation("base price must not be negative").WithDetail("field", "basePrice")
	}
	switch p.Status {
	case ProductActive, ProductDiscontinued:
	default:
		return apperror.NewValidation("unknown product status").WithDetail("field", "status")
	}
	return nil
}
