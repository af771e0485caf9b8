package store

import (
	"context"
	"database/sql"
	"errors"
)

type CategoriesStore interface {
	// ResolveTx returns the id of the active category with the given
	// name, creating a placeholder category when none exists. The
	// insert tolerates a concurrent create of the same name.
	ResolveTx(ctx context.Context, tx *sql.Tx, name string) (int64, error)
}

type categoriesStore struct {
	db *DB
}

func NewCategoriesStore(db *DB) CategoriesStore {
	return &categoriesStore{db: db}
}

func (s *categoriesStore) ResolveTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	id, err := s.findTx(ctx, tx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, &QueryError{Query: "select crime category", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO crime_categories (category_name, category_icon, category_color, description)
		VALUES (?, '🔍', '#718096', ?)
		ON CONFLICT(category_name) DO NOTHING`,
		name, "Auto-created category for: "+name); err != nil {
		return 0, &QueryError{Query: "insert crime category", Err: err}
	}
	id, err = s.findTx(ctx, tx, name)
	if err != nil {
		return 0, &QueryError{Query: "re-select crime category", Err: err}
	}
	return id, nil
}

func (s *categoriesStore) findTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM crime_categories WHERE category_name = ? AND is_active = 1`, name).Scan(&id)
	return id, err
}
