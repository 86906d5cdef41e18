package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NordCoder/Uptimer/internal/domain/record"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func encodeRecord(v record.Record) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

func decodeRecord(b []byte) (record.Record, error) {
	var v record.Record
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}
