package repository

import "incidenttagger/internal/model"

// SelectionRepository stores the selector value chosen for each displayed frame.
type SelectionRepository interface {
	// Create/update operations
	Set(sel *model.Selection) error

	// Read operations
	GetAll() (map[int]string, error)

	// Delete operations
	Delete(index int) error
	DeleteAll() error
}
