package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Uptimer/internal/domain/record"
)

var _ record.Store = (*RecordRepoImpl)(nil)

type RecordRepoImpl struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepoImpl { return &RecordRepoImpl{db: db} }

const (
	qRecordInsert = `
INSERT INTO records (collection, key, value)
VALUES ($1, $2, $3);
`

	qRecordGet = `
SELECT value
FROM records
WHERE collection = $1 AND key = $2;
`

	qRecordUpdate = `
UPDATE records
SET value = $3,
    updated_at = NOW()
WHERE collection = $1 AND key = $2;
`

	qRecordDelete = `DELETE FROM records WHERE collection = $1 AND key = $2;`

	qRecordKeys = `
SELECT key
FROM records
WHERE collection = $1
ORDER BY key;
`
)

func (r *RecordRepoImpl) Create(ctx context.Context, collection, key string, value record.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	b, err := encodeRecord(value)
	if err != nil {
		return err
	}
	if _, err := r.db.Pool.Exec(ctx, qRecordInsert, collection, key, b); err != nil {
		if isUniqueViolation(err) {
			return record.ErrExists
		}
		return fmt.Errorf("insert record %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *RecordRepoImpl) Read(ctx context.Context, collection, key string) (record.Record, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var b []byte
	if err := r.db.Pool.QueryRow(ctx, qRecordGet, collection, key).Scan(&b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("get record %s/%s: %w", collection, key, err)
	}
	return decodeRecord(b)
}

func (r *RecordRepoImpl) Update(ctx context.Context, collection, key string, value record.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	b, err := encodeRecord(value)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, qRecordUpdate, collection, key, b)
	if err != nil {
		return fmt.Errorf("update record %s/%s: %w", collection, key, err)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (r *RecordRepoImpl) Delete(ctx context.Context, collection, key string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qRecordDelete, collection, key)
	if err != nil {
		return fmt.Errorf("delete record %s/%s: %w", collection, key, err)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (r *RecordRepoImpl) List(ctx context.Context, collection string) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qRecordKeys, collection)
	if err != nil {
		return nil, fmt.Errorf("list records %s: %w", collection, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan keys %s: %w", collection, err)
	}
	return keys, nil
}
