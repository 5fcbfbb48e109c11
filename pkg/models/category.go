package models

import (
	"github.com/ammar0144/catalog4go/pkg/repository"
)

type Category struct {
	repository.Model
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Products    []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (Category) TableName() string { return "categories" }

var categoryColumns = map[string]bool{"id": true, "name": true, "description": true}

// NewCategory builds a Category from column-keyed fields.
func NewCategory(fields map[string]any) (*Category, []string, error) {
	c := &Category{}
	for key, v := range fields {
		var err error
		switch key {
		case "id":
			c.ID, err = asUint(key, v)
		case "name":
			c.Name, err = asString(key, v)
		case "description":
			c.Description, err = asOptString(key, v)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return c, unknownKeys(fields, categoryColumns), nil
}
