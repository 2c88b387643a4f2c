// Package store reads report rows from the marketplace Postgres database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/bjaus/report"
	"github.com/bjaus/report/internal/config"
)

// Open returns a pooled lib/pq handle. It does not contact the server; use
// [Products.Ping] for that.
func Open(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Filter narrows the products included in a report. Zero values match
// everything.
type Filter struct {
	ActiveOnly bool
	SellerID   string
	Category   string
	Limit      int
}

const selectRows = `SELECT p.name, p.price, COALESCE(p.description, ''), COALESCE(p.category, ''), ` +
	`COALESCE(p.material, ''), COALESCE(p.color, ''), p.stock, p.created_at, ` +
	`COALESCE(p.seller_id::text, '') FROM products p`

// Products projects the products table into report rows.
type Products struct {
	db *sql.DB
}

func NewProducts(db *sql.DB) *Products {
	return &Products{db: db}
}

// Ping checks that the database is reachable.
func (p *Products) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// ReportRows returns the rows matching f, newest first.
func (p *Products) ReportRows(ctx context.Context, f Filter) ([]report.Row, error) {
	query, args := buildQuery(f)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := []report.Row{}
	for rows.Next() {
		var r report.Row
		if err := rows.Scan(
			&r.Name, &r.Price, &r.Description, &r.Category,
			&r.Material, &r.Color, &r.Stock, &r.CreatedAt, &r.SellerID,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return out, nil
}

func buildQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.ActiveOnly {
		where = append(where, "p.is_active")
	}
	if f.SellerID != "" {
		where = append(where, "p.seller_id::text = "+arg(f.SellerID))
	}
	if f.Category != "" {
		where = append(where, "p.category = "+arg(f.Category))
	}

	var b strings.Builder
	b.WriteString(selectRows)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY p.created_at DESC, p.id")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	return b.String(), args
}
