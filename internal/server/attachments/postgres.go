package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/attachkeeper/internal/common"
	"github.com/dmitrijs2005/attachkeeper/internal/dbx"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a Attachment) (Attachment, bool, error) {
	var (
		stored  Attachment
		created bool
	)

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := findByObjectKey(ctx, tx, a.ObjectKey)
		switch {
		case err == nil:
			if existing.CustomerRef != a.CustomerRef {
				return common.ErrorAlreadyExists
			}
			stored = existing
			return nil
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		stored, err = insert(ctx, tx, a)
		created = err == nil
		return err
	})
	if err != nil {
		return Attachment{}, false, err
	}
	return stored, created, nil
}

func findByObjectKey(ctx context.Context, db dbx.DBTX, objectKey string) (Attachment, error) {
	query := `SELECT id, customer_ref, filename, object_key, created_at FROM attachments
		WHERE object_key = $1
		FOR UPDATE`

	var a Attachment
	err := db.QueryRowContext(ctx, query, objectKey).Scan(&a.ID, &a.CustomerRef, &a.Filename, &a.ObjectKey, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attachment{}, common.ErrorNotFound
	}
	if err != nil {
		return Attachment{}, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func insert(ctx context.Context, db dbx.DBTX, a Attachment) (Attachment, error) {
	query := `INSERT INTO attachments (id, customer_ref, filename, object_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	a.ID = uuid.NewString()
	if err := db.QueryRowContext(ctx, query, a.ID, a.CustomerRef, a.Filename, a.ObjectKey).Scan(&a.CreatedAt); err != nil {
		return Attachment{}, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerRef string) ([]Attachment, error) {
	query := `SELECT id, customer_ref, filename, object_key, created_at FROM attachments
		WHERE customer_ref = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, customerRef)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []Attachment{}
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.CustomerRef, &a.Filename, &a.ObjectKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
