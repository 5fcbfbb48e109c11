package models

import (
	"sort"

	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Product is a sellable catalog item.
type Product struct {
	repository.Model
	Name         string        `gorm:"size:200;not null;index" json:"name"`
	Description  *string       `gorm:"type:text" json:"description"`
	Price        float64       `gorm:"not null" json:"price"`
	Stock        int           `gorm:"not null;default:0" json:"stock"`
	ImageURL     *string       `gorm:"column:image_url;size:500" json:"image_url"`
	CategoryID   uint          `gorm:"not null;index" json:"category_id"`
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Reviews      []Review      `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`
	OrderDetails []OrderDetail `gorm:"foreignKey:ProductID" json:"order_details,omitempty"`
}

func (Product) TableName() string { return "products" }

// NewProduct builds a Product from column-keyed fields. Keys that are not
// product columns are returned in ignored.
func NewProduct(fields map[string]any) (p *Product, ignored []string, err error) {
	p = &Product{}
	ignored, err = p.assign(fields, true)
	if err != nil {
		return nil, nil, err
	}
	return p, ignored, nil
}

// Apply patches the product with the given fields. The identifier is never
// changed; "id" is reported as ignored like any other unknown key.
func (p *Product) Apply(fields map[string]any) (ignored []string, err error) {
	return p.assign(fields, false)
}

func (p *Product) assign(fields map[string]any, allowID bool) ([]string, error) {
	var ignored []string
	for key, v := range fields {
		var err error
		switch key {
		case "id":
			if !allowID {
				ignored = append(ignored, key)
				continue
			}
			p.ID, err = asUint(key, v)
		case "name":
			p.Name, err = asString(key, v)
		case "description":
			p.Description, err = asOptString(key, v)
		case "price":
			p.Price, err = asFloat(key, v)
		case "stock":
			p.Stock, err = asInt(key, v)
		case "image_url":
			p.ImageURL, err = asOptString(key, v)
		case "category_id":
			p.CategoryID, err = asUint(key, v)
		default:
			ignored = append(ignored, key)
		}
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(ignored)
	return ignored, nil
}
