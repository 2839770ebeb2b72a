package sqlite

import (
	"fmt"

	"incidenttagger/internal/model"
)

// SelectionRepository implements repository.SelectionRepository for SQLite.
type SelectionRepository struct {
	db *DB
}

// NewSelectionRepository creates a new SQLite selection repository.
func NewSelectionRepository(db *DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Set stores the violation chosen for a frame index, replacing any earlier choice.
func (r *SelectionRepository) Set(sel *model.Selection) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO selections (frame_index, violation, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(frame_index) DO UPDATE SET
			violation = excluded.violation,
			updated_at = excluded.updated_at
	`, sel.FrameIndex, sel.Violation)
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// GetAll returns every stored selection keyed by frame index.
func (r *SelectionRepository) GetAll() (map[int]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT frame_index, violation FROM selections ORDER BY frame_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	selections := make(map[int]string)
	for rows.Next() {
		var (
			index     int
			violation string
		)
		if err := rows.Scan(&index, &violation); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		selections[index] = violation
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read selections: %w", err)
	}

	return selections, nil
}

// Delete removes the selection for a frame index.
func (r *SelectionRepository) Delete(index int) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM selections WHERE frame_index = ?`, index); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}

// DeleteAll removes every selection.
func (r *SelectionRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM selections`); err != nil {
		return fmt.Errorf("failed to clear selections: %w", err)
	}
	return nil
}
