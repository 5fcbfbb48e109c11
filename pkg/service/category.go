package service

import (
	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
	"github.com/ammar0144/catalog4go/pkg/schemas"
)

// CategoryService is the plain CRUD service for categories.
type CategoryService = BaseService[models.Category, schemas.Category]

func NewCategoryService(repo repository.Repository[models.Category], baseLog *logger.Logger, opts ...Option) *CategoryService {
	return NewBaseService[models.Category, schemas.Category]("CategoryService", repo, models.NewCategory, baseLog, opts...)
}
