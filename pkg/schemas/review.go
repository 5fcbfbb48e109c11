package schemas

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ammar0144/catalog4go/pkg/models"
)

// Review is the standalone review payload. Unlike ReviewEmbedded the
// rating and product are mandatory and a comment, when given, must say
// something.
type Review struct {
	ID        *uint    `json:"id,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Comment   *string  `json:"comment,omitempty"`
	ProductID *uint    `json:"product_id,omitempty"`
}

func (r Review) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1.0), validation.Max(5.0)),
		validation.Field(&r.Comment, validation.When(r.Comment != nil, validation.Required, validation.RuneLength(10, 1000))),
		validation.Field(&r.ProductID, validation.Required),
	)
}

func (r Review) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "id", r.ID)
	setIf(f, "rating", r.Rating)
	setIf(f, "comment", r.Comment)
	setIf(f, "product_id", r.ProductID)
	return f
}

func ReviewFromModel(m *models.Review) Review {
	return Review{
		ID:        ptr(m.ID),
		Rating:    m.Rating,
		Comment:   m.Comment,
		ProductID: ptr(m.ProductID),
	}
}
