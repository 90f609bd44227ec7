// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

func init() {
	Stores.Register("sqlite", func(_ context.Context, params map[string]string) (Resolver, error) {
		dsn := params["dsn"]
		if dsn == "" {
			return nil, fmt.Errorf("sqlite: dsn parameter is required")
		}
		return NewSQLiteResolver(dsn)
	})
}

// SQLiteResolver looks up consumer keys in a SQLite database. Intended
// for local development and tests; production deployments use postgres.
type SQLiteResolver struct {
	db *sql.DB
}

// NewSQLiteResolver opens (and if needed creates) the database at dsn,
// e.g. "file:consumers.db" or ":memory:".
func NewSQLiteResolver(dsn string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// A :memory: database exists per connection; one connection keeps
	// the schema visible to every query.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	r := &SQLiteResolver{db: db}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the underlying database connection.
func (r *SQLiteResolver) Close() error {
	return r.db.Close()
}

func (r *SQLiteResolver) createTables() error {
	stmt := `CREATE TABLE IF NOT EXISTS sol_connect_consumers (
		solomon_consumer_key TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL DEFAULT '',
		customer_email TEXT NOT NULL DEFAULT '',
		plan_level TEXT NOT NULL DEFAULT '',
		openai_api_key TEXT NOT NULL,
		create_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		modified_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := r.db.Exec(stmt); err != nil {
		return fmt.Errorf("sqlite create tables: %w", err)
	}
	return nil
}

// AddConsumer inserts or replaces a consumer record. Used to seed
// development databases.
func (r *SQLiteResolver) AddConsumer(ctx context.Context, info *ConsumerInfo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sol_connect_consumers
			(solomon_consumer_key, customer_name, customer_email, plan_level, openai_api_key)
		VALUES (?, ?, ?, ?, ?)`,
		info.ConsumerKey, info.CustomerName, info.CustomerEmail, info.PlanLevel, info.OpenAIAPIKey)
	if err != nil {
		return fmt.Errorf("sqlite add consumer: %w", err)
	}
	return nil
}

// ResolveAPIKey implements Resolver.
func (r *SQLiteResolver) ResolveAPIKey(ctx context.Context, consumerKey string) (string, error) {
	var apiKey string
	err := r.db.QueryRowContext(ctx,
		`SELECT openai_api_key FROM sol_connect_consumers WHERE solomon_consumer_key = ?`,
		consumerKey,
	).Scan(&apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrConsumerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite resolve api key: %w", err)
	}
	return apiKey, nil
}

// GetConsumerInfo implements Resolver.
func (r *SQLiteResolver) GetConsumerInfo(ctx context.Context, consumerKey string) (*ConsumerInfo, error) {
	var info ConsumerInfo
	err := r.db.QueryRowContext(ctx,
		`SELECT solomon_consumer_key, customer_name, customer_email, plan_level,
			openai_api_key, create_date, modified_on
		FROM sol_connect_consumers WHERE solomon_consumer_key = ?`,
		consumerKey,
	).Scan(&info.ConsumerKey, &info.CustomerName, &info.CustomerEmail, &info.PlanLevel,
		&info.OpenAIAPIKey, &info.CreatedAt, &info.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConsumerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get consumer info: %w", err)
	}
	return &info, nil
}
