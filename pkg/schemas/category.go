package schemas

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ammar0144/catalog4go/pkg/models"
)

type Category struct {
	ID          *uint   `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, 100)),
	)
}

func (c Category) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "id", c.ID)
	setIf(f, "name", c.Name)
	setIf(f, "description", c.Description)
	return f
}

func CategoryFromModel(m *models.Category) Category {
	return Category{
		ID:          ptr(m.ID),
		Name:        ptr(m.Name),
		Description: m.Description,
	}
}
