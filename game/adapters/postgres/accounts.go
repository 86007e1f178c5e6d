// Package postgres backs the account store with PostgreSQL. It is wired in
// when a database URL is configured; otherwise the in-memory store serves.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltrace/voltrace/game/adapters"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL UNIQUE,
	level            INT  NOT NULL DEFAULT 1,
	xp               INT  NOT NULL DEFAULT 0,
	counters         JSONB NOT NULL DEFAULT '{}'::jsonb,
	consecutive_wins INT  NOT NULL DEFAULT 0
)`

// Accounts implements adapters.AccountStore on a pgx connection pool.
type Accounts struct {
	pool *pgxpool.Pool
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Accounts, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Accounts{pool: pool}, nil
}

// Close releases the pool.
func (a *Accounts) Close() {
	a.pool.Close()
}

// Find returns the account for a name, creating a fresh level-1 row on
// first sight.
func (a *Accounts) Find(ctx context.Context, name string) (*adapters.Account, error) {
	row := a.pool.QueryRow(ctx, `
		INSERT INTO accounts (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, level, xp, counters, consecutive_wins`, name)

	var (
		acc adapters.Account
		raw []byte
	)
	if err := row.Scan(&acc.ID, &acc.Name, &acc.Level, &acc.XP, &raw, &acc.ConsecutiveWins); err != nil {
		return nil, fmt.Errorf("find account %q: %w", name, err)
	}
	acc.Counters = make(map[string]int)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &acc.Counters); err != nil {
			return nil, fmt.Errorf("decode counters for %q: %w", name, err)
		}
	}
	return &acc, nil
}

// Persist applies an update inside a transaction, merging counters
// additively against the stored row.
func (a *Accounts) Persist(ctx context.Context, account *adapters.Account, update adapters.AccountUpdate) error {
	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT counters FROM accounts WHERE name = $1 FOR UPDATE`, account.Name).Scan(&raw)
	if err != nil {
		return fmt.Errorf("lock account %q: %w", account.Name, err)
	}
	counters := make(map[string]int)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &counters); err != nil {
			return fmt.Errorf("decode counters for %q: %w", account.Name, err)
		}
	}
	for k, v := range update.Counters {
		counters[k] += v
	}
	merged, err := json.Marshal(counters)
	if err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts
		SET xp = xp + $2,
		    level = level + $3,
		    counters = $4,
		    consecutive_wins = $5
		WHERE name = $1`,
		account.Name, update.XPDelta, update.LevelDelta, merged, update.ConsecutiveWins)
	if err != nil {
		return fmt.Errorf("update account %q: %w", account.Name, err)
	}
	return tx.Commit(ctx)
}
