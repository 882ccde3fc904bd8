package quote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// createdAtLayout is fixed-width so lexical order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore keeps quotes in the quotes table. Input and result are stored as
// JSON snapshots and read back without recalculation.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Insert stores q.
func (s *SQLStore) Insert(ctx context.Context, q Quote) error {
	inputJSON, err := json.Marshal(q.Input)
	if err != nil {
		return fmt.Errorf("encode quote input: %w", err)
	}
	resultJSON, err := json.Marshal(q.Result)
	if err != nil {
		return fmt.Errorf("encode quote result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id,
			created_at,
			customer_name,
			customer_email,
			customer_phone,
			customer_company,
			salmon_type,
			notes,
			input_json,
			result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		q.ID,
		q.CreatedAt.UTC().Format(createdAtLayout),
		q.Customer.Name,
		q.Customer.Email,
		q.Customer.Phone,
		q.Customer.Company,
		q.SalmonType,
		q.Notes,
		string(inputJSON),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

const selectQuote = `
	SELECT
		id,
		created_at,
		customer_name,
		COALESCE(customer_email, ''),
		COALESCE(customer_phone, ''),
		COALESCE(customer_company, ''),
		COALESCE(salmon_type, ''),
		COALESCE(notes, ''),
		input_json,
		result_json
	FROM quotes
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var (
		q          Quote
		createdAt  string
		inputJSON  string
		resultJSON string
	)
	if err := row.Scan(
		&q.ID,
		&createdAt,
		&q.Customer.Name,
		&q.Customer.Email,
		&q.Customer.Phone,
		&q.Customer.Company,
		&q.SalmonType,
		&q.Notes,
		&inputJSON,
		&resultJSON,
	); err != nil {
		return Quote{}, err
	}

	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return Quote{}, fmt.Errorf("parse quote created_at %q: %w", createdAt, err)
	}
	q.CreatedAt = t

	if err := json.Unmarshal([]byte(inputJSON), &q.Input); err != nil {
		return Quote{}, fmt.Errorf("decode quote input: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &q.Result); err != nil {
		return Quote{}, fmt.Errorf("decode quote result: %w", err)
	}
	return q, nil
}

// Get returns the quote stored under id, or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx, selectQuote+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, fmt.Errorf("query quote: %w", err)
	}
	return q, nil
}

// List returns every quote, newest first.
func (s *SQLStore) List(ctx context.Context) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx, selectQuote+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// Delete removes the quote with id; a missing id is not an error.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}
