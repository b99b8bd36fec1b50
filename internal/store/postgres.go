// Package store persists replay audits to Postgres via pgx. It mirrors
// the teacher's internal/db.PostgresStore: a thin wrapper around a
// pgxpool.Pool, a schema file loaded at startup, and one insert per
// persisted record. The database is optional end to end — cmd/server
// runs without one exactly like the teacher's cmd/engine/main.go does
// when no connection string is configured.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paddla/game-core/internal/protocol"
)

// PostgresStore is a pgx-backed replay audit log.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens and pings a connection pool.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("connected to PostgreSQL for replay audit storage")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/store/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("replay audit schema initialized")
	return nil
}

// RecordAudit implements protocol.AuditRecorder. It logs and drops the
// error on a failed insert rather than propagating it: an audit write is
// best-effort bookkeeping, not a condition of the game's finish response.
func (s *PostgresStore) RecordAudit(a protocol.ReplayAudit) {
	sql := `
		INSERT INTO replay_audits (game_id, finished_at, server_total_win, client_total_win, matched)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO UPDATE
		SET finished_at = EXCLUDED.finished_at,
		    server_total_win = EXCLUDED.server_total_win,
		    client_total_win = EXCLUDED.client_total_win,
		    matched = EXCLUDED.matched;
	`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.pool.Exec(ctx, sql, a.GameID, a.FinishedAt, a.ServerTotalWin, a.ClientTotalWin, a.Matched); err != nil {
		log.Printf("[store] failed to record replay audit for %s: %v", a.GameID, err)
	}
}

// RecordCommitmentRotation archives a newly published commitment.
// internal/sweep calls this after a successful rotation so the
// commitment timeline survives a restart, independent of in-memory
// CommitmentSlot state.
func (s *PostgresStore) RecordCommitmentRotation(commitment string, issuedAt time.Time) {
	sql := `
		INSERT INTO commitment_archive (commitment, issued_at)
		VALUES ($1, $2)
		ON CONFLICT (commitment) DO NOTHING;
	`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.pool.Exec(ctx, sql, commitment, issuedAt); err != nil {
		log.Printf("[store] failed to archive commitment: %v", err)
	}
}

// MismatchRate reports, of the last limit finished games, how many
// failed to match the client's claim. Useful as a cheap dashboard signal
// for client-side tampering.
func (s *PostgresStore) MismatchRate(ctx context.Context, limit int) (mismatched int, total int, err error) {
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}

	sql := `
		SELECT COUNT(*) FILTER (WHERE NOT matched), COUNT(*)
		FROM (SELECT matched FROM replay_audits ORDER BY finished_at DESC LIMIT $1) recent;
	`
	row := s.pool.QueryRow(ctx, sql, limit)
	if err := row.Scan(&mismatched, &total); err != nil {
		return 0, 0, err
	}
	return mismatched, total, nil
}
