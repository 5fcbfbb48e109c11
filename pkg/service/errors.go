package service

import (
	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Error kinds returned by every service. Both are matched with errors.Is.
var (
	ErrNotFound   = repository.ErrNotFound
	ErrValidation = repository.ErrValidation
)

func IsNotFound(err error) bool {
	return repository.IsNotFound(err)
}

func IsValidation(err error) bool {
	return repository.IsValidation(err)
}
