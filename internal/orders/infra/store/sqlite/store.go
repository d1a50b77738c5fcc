// Package sqlite implements ports.OrderStore as a document store on
// SQLite: each order is one JSON document in one row, and every
// operation touches a single row — per-document atomicity, exactly the
// guarantee the engine is specified against. Customer lookups use an
// indexed column; seller-membership filtering is a predicate over the
// decoded documents, evaluated in Go, because membership lives inside
// the items array.
//
// WAL mode is enabled on Open so report scans never block writers.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"

	// Pure-Go SQLite driver; no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    -- Store-assigned document id.
    id            TEXT PRIMARY KEY,

    -- Human-readable order number; unique per store instance.
    order_number  TEXT NOT NULL UNIQUE,

    -- Extracted for the customer listing; authoritative copy is in doc.
    customer_id   TEXT NOT NULL,

    -- RFC3339 TEXT, used for newest-first ordering.
    created_at    TEXT NOT NULL,

    -- The order aggregate as a JSON document.
    doc           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);
`

// Store is the SQLite implementation of ports.OrderStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the order database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("orderstore: open %q: %w", path, err)
	}

	// Single writer connection; SQLite's sweet spot.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orderstore: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create persists a new order document, assigning its ID if empty.
func (s *Store) Create(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("orderstore: encode order %s: %w", o.ID, err)
	}

	const q = `INSERT INTO orders (id, order_number, customer_id, created_at, doc) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		o.ID, o.OrderNumber, o.CustomerID, o.CreatedAt.UTC().Format(timeLayout), string(doc))
	if err != nil {
		return fmt.Errorf("orderstore: create order %s: %w", o.ID, err)
	}
	return nil
}

// FindByID returns the order with the given id, or ports.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	const q = `SELECT doc FROM orders WHERE id = ?`

	var doc string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orderstore: find order %s: %w", id, err)
	}
	return decode(doc)
}

// FindByQuery returns matching orders newest first. Seller filtering
// and pagination happen after decoding: the seller predicate needs the
// document, and pagination must apply to the filtered set.
func (s *Store) FindByQuery(ctx context.Context, q ports.Query) ([]*entity.Order, error) {
	orders, err := s.scan(ctx, q)
	if err != nil {
		return nil, err
	}
	return paginate(orders, q), nil
}

// Count returns the number of matching orders, ignoring pagination.
func (s *Store) Count(ctx context.Context, q ports.Query) (int64, error) {
	if q.SellerID == "" {
		// No document predicate; let SQL count.
		query := `SELECT COUNT(*) FROM orders`
		args := []any{}
		if q.CustomerID != "" {
			query += ` WHERE customer_id = ?`
			args = append(args, q.CustomerID)
		}
		var n int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("orderstore: count: %w", err)
		}
		return n, nil
	}

	orders, err := s.scan(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(orders)), nil
}

// Update overwrites the document with the given order's id. Last write
// wins; there is no version guard.
func (s *Store) Update(ctx context.Context, o *entity.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("orderstore: encode order %s: %w", o.ID, err)
	}

	const q = `UPDATE orders SET doc = ?, customer_id = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, string(doc), o.CustomerID, o.ID)
	if err != nil {
		return fmt.Errorf("orderstore: update order %s: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("orderstore: update order %s: %w", o.ID, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// scan loads and decodes every document matching the SQL-expressible
// part of the query, newest first, then applies the seller predicate.
func (s *Store) scan(ctx context.Context, q ports.Query) ([]*entity.Order, error) {
	query := `SELECT doc FROM orders`
	args := []any{}
	if q.CustomerID != "" {
		query += ` WHERE customer_id = ?`
		args = append(args, q.CustomerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orderstore: query: %w", err)
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("orderstore: scan: %w", err)
		}
		o, err := decode(doc)
		if err != nil {
			return nil, err
		}
		if q.SellerID != "" && !o.HasSellerItem(q.SellerID) {
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func decode(doc string) (*entity.Order, error) {
	var o entity.Order
	if err := json.Unmarshal([]byte(doc), &o); err != nil {
		return nil, fmt.Errorf("orderstore: decode document: %w", err)
	}
	return &o, nil
}

func paginate(orders []*entity.Order, q ports.Query) []*entity.Order {
	if q.Limit <= 0 {
		return orders
	}
	off := q.Offset()
	if off >= len(orders) {
		return nil
	}
	end := off + q.Limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[off:end]
}

const timeLayout = "2006-01-02T15:04:05.999999999Z"
