package ecosystem

import "errors"

var (
	// ErrInvalidName is returned for species or ecosystem names that fail validation.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidDiet is returned for diet strings outside the closed set.
	ErrInvalidDiet = errors.New("invalid diet")

	ErrEcosystemNotFound = errors.New("ecosystem not found")
	ErrEcosystemExists   = errors.New("ecosystem already exists")
	ErrSpeciesNotFound   = errors.New("species not found")
)
