package schemas

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ammar0144/catalog4go/pkg/models"
)

// Product is the product DTO. CategoryName and Rating are computed on
// read and never stored; Reviews are embedded without a product back
// reference.
type Product struct {
	ID           *uint            `json:"id,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Price        *float64         `json:"price,omitempty"`
	Stock        *int             `json:"stock,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
	CategoryID   *uint            `json:"category_id,omitempty"`
	Category     *Category        `json:"category,omitempty"`
	CategoryName *string          `json:"category_name,omitempty"`
	Rating       *float64         `json:"rating,omitempty"`
	Reviews      []ReviewEmbedded `json:"reviews,omitempty"`
}

func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.When(p.Name != nil, validation.Required, validation.RuneLength(1, 200))),
		validation.Field(&p.Price, validation.By(positive)),
		validation.Field(&p.Stock, validation.Min(0)),
		validation.Field(&p.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&p.Reviews),
	)
}

func (p Product) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "id", p.ID)
	setIf(f, "name", p.Name)
	setIf(f, "description", p.Description)
	setIf(f, "price", p.Price)
	setIf(f, "stock", p.Stock)
	setIf(f, "image_url", p.ImageURL)
	setIf(f, "category_id", p.CategoryID)
	setIf(f, "category_name", p.CategoryName)
	setIf(f, "rating", p.Rating)
	if p.Category != nil {
		f["category"] = p.Category.Fields()
	}
	if p.Reviews != nil {
		reviews := make([]any, len(p.Reviews))
		for i, r := range p.Reviews {
			reviews[i] = r.Fields()
		}
		f["reviews"] = reviews
	}
	return f
}

// ReviewEmbedded is a review nested inside a Product.
type ReviewEmbedded struct {
	ID        *uint    `json:"id,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Comment   *string  `json:"comment,omitempty"`
	ProductID *uint    `json:"product_id,omitempty"`
}

func (r ReviewEmbedded) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&r.Comment, validation.RuneLength(0, 1000)),
	)
}

func (r ReviewEmbedded) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "id", r.ID)
	setIf(f, "rating", r.Rating)
	setIf(f, "comment", r.Comment)
	setIf(f, "product_id", r.ProductID)
	return f
}

// ProductCreate is the strict creation payload: name, price and
// category_id are mandatory, stock defaults to zero.
type ProductCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  uint    `json:"category_id"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (c ProductCreate) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&c.Price, validation.By(positive)),
		validation.Field(&c.Stock, validation.Min(0)),
		validation.Field(&c.CategoryID, validation.Required),
	)
}

// ToProduct converts the payload into a Product schema with every field set.
func (c ProductCreate) ToProduct() Product {
	return Product{
		Name:        &c.Name,
		Description: c.Description,
		Price:       &c.Price,
		Stock:       &c.Stock,
		CategoryID:  &c.CategoryID,
		ImageURL:    c.ImageURL,
	}
}

func (c ProductCreate) Fields() map[string]any {
	return c.ToProduct().Fields()
}

// positive requires a number strictly above zero when set. Min skips zero
// values, so it cannot express this.
func positive(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		if n <= 0 {
			return errors.New("must be greater than 0")
		}
	case int:
		if n <= 0 {
			return errors.New("must be greater than 0")
		}
	}
	return nil
}

// ProductFromModel maps an entity to its schema: embedded reviews without
// back reference, average rating and denormalised category name.
// Associations that were not preloaded are left unset.
func ProductFromModel(m *models.Product) Product {
	p := Product{
		ID:          ptr(m.ID),
		Name:        ptr(m.Name),
		Description: m.Description,
		Price:       ptr(m.Price),
		Stock:       ptr(m.Stock),
		ImageURL:    m.ImageURL,
		CategoryID:  ptr(m.CategoryID),
	}
	if m.Category != nil {
		p.CategoryName = ptr(m.Category.Name)
	}
	if len(m.Reviews) > 0 {
		p.Reviews = make([]ReviewEmbedded, len(m.Reviews))
		for i, r := range m.Reviews {
			p.Reviews[i] = ReviewEmbedded{
				ID:        ptr(r.ID),
				Rating:    r.Rating,
				Comment:   r.Comment,
				ProductID: ptr(r.ProductID),
			}
		}
		p.Rating = AverageRating(p.Reviews)
	}
	return p
}

// AverageRating is the mean of the non-nil ratings, or nil when there are none.
func AverageRating(reviews []ReviewEmbedded) *float64 {
	var sum float64
	var n int
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		sum += *r.Rating
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func ptr[T any](v T) *T { return &v }
