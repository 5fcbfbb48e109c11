package models

import (
	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Review is a customer rating of a product.
type Review struct {
	repository.Model
	Rating    *float64 `json:"rating"` // null when the customer left no score
	Comment   *string  `gorm:"type:text" json:"comment"`
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Review) TableName() string { return "reviews" }

var reviewColumns = map[string]bool{"id": true, "rating": true, "comment": true, "product_id": true}

func NewReview(fields map[string]any) (*Review, []string, error) {
	r := &Review{}
	for key, v := range fields {
		var err error
		switch key {
		case "id":
			r.ID, err = asUint(key, v)
		case "rating":
			r.Rating, err = asOptFloat(key, v)
		case "comment":
			r.Comment, err = asOptString(key, v)
		case "product_id":
			r.ProductID, err = asUint(key, v)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return r, unknownKeys(fields, reviewColumns), nil
}

// OrderDetail is one line of a placed order. Its presence marks a product
// as having sales history.
type OrderDetail struct {
	repository.Model
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

func (OrderDetail) TableName() string { return "order_details" }

// All lists every catalog model, in dependency order.
func All() []any {
	return []any{&Category{}, &Product{}, &Review{}, &OrderDetail{}}
}
