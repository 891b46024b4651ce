package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/ashureev/debate-trainer/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. Debates are stored as
// documents: scalar fields in columns, history and tips as JSON.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
}

// NewSQLite creates a new SQLite-backed repository with the default retry policy.
func NewSQLite(dbPath string) (Repository, error) {
	return NewSQLiteWithRetry(dbPath, shared.DefaultRetryPolicy())
}

// NewSQLiteWithRetry creates a new SQLite-backed repository whose writes are
// retried according to policy when the database is busy.
func NewSQLiteWithRetry(dbPath string, policy shared.RetryPolicy) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: policy}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debates (
		debate_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		personality TEXT NOT NULL,
		history_json TEXT NOT NULL,
		round INTEGER NOT NULL,
		ended INTEGER NOT NULL DEFAULT 0,
		grade TEXT,
		grade_description TEXT,
		improvement_tips_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_debates_user ON debates(user_id);
	CREATE INDEX IF NOT EXISTS idx_debates_open_updated ON debates(updated_at) WHERE ended = 0;
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, username, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &user.Username, &lastSeen, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	return s.retry.Do(ctx, "upsert_user", func() error {
		_, err := s.db.ExecContext(ctx, query,
			user.UserID, user.Username, user.LastSeenAt.Unix(),
			user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		return nil
	})
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// CreateDebate persists a new debate document.
func (s *SQLiteStore) CreateDebate(ctx context.Context, d *domain.Debate) error {
	historyJSON, tipsJSON, err := encodeDebate(d)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO debates (
		debate_id, user_id, topic, personality, history_json, round, ended,
		grade, grade_description, improvement_tips_json, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.retry.Do(ctx, "create_debate", func() error {
		_, err := s.db.ExecContext(ctx, query,
			d.ID, d.UserID, d.Topic, string(d.Personality), historyJSON, d.Round, d.Ended,
			nullString(string(d.Grade)), nullString(d.GradeDescription), tipsJSON,
			d.CreatedAt.Unix(), d.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert debate: %w", err)
		}
		return nil
	})
}

const debateColumns = `debate_id, user_id, topic, personality, history_json, round, ended,
		       grade, grade_description, improvement_tips_json, created_at, updated_at`

// GetDebate retrieves a debate by ID.
func (s *SQLiteStore) GetDebate(ctx context.Context, debateID string) (*domain.Debate, error) {
	query := `SELECT ` + debateColumns + ` FROM debates WHERE debate_id = ?`

	d, err := scanDebate(s.db.QueryRowContext(ctx, query, debateID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListStaleDebates returns unfinished debates not updated within ttl,
// oldest first.
func (s *SQLiteStore) ListStaleDebates(ctx context.Context, ttl time.Duration, limit int) ([]*domain.Debate, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `SELECT ` + debateColumns + `
		FROM debates WHERE ended = 0 AND updated_at < ?
		ORDER BY updated_at ASC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale debates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var debates []*domain.Debate
	for rows.Next() {
		d, err := scanDebate(rows)
		if err != nil {
			return nil, err
		}
		debates = append(debates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale debates: %w", err)
	}
	return debates, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDebate(row rowScanner) (*domain.Debate, error) {
	var d domain.Debate
	var personality, historyJSON string
	var grade, gradeDescription, tipsJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&d.ID, &d.UserID, &d.Topic, &personality, &historyJSON, &d.Round, &d.Ended,
		&grade, &gradeDescription, &tipsJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan debate row: %w", err)
	}

	d.Personality = domain.Persona(personality)
	d.Grade = domain.Grade(grade.String)
	d.GradeDescription = gradeDescription.String
	d.CreatedAt = time.Unix(createdAt, 0)
	d.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(historyJSON), &d.History); err != nil {
		return nil, fmt.Errorf("decode debate history: %w", err)
	}
	if tipsJSON.Valid && tipsJSON.String != "" {
		if err := json.Unmarshal([]byte(tipsJSON.String), &d.ImprovementTips); err != nil {
			return nil, fmt.Errorf("decode improvement tips: %w", err)
		}
	}

	return &d, nil
}

// UpdateDebate overwrites history, round and grade fields of an open debate.
func (s *SQLiteStore) UpdateDebate(ctx context.Context, d *domain.Debate, expectedRound int) error {
	historyJSON, tipsJSON, err := encodeDebate(d)
	if err != nil {
		return err
	}

	query := `
	UPDATE debates SET
		history_json = ?, round = ?, ended = ?,
		grade = ?, grade_description = ?, improvement_tips_json = ?, updated_at = ?
	WHERE debate_id = ? AND round = ? AND ended = 0`

	return s.retry.Do(ctx, "update_debate", func() error {
		result, err := s.db.ExecContext(ctx, query,
			historyJSON, d.Round, d.Ended,
			nullString(string(d.Grade)), nullString(d.GradeDescription), tipsJSON,
			d.UpdatedAt.Unix(), d.ID, expectedRound,
		)
		if err != nil {
			return fmt.Errorf("update debate: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			slog.Warn("UpdateDebate affected 0 rows", "debate_id", d.ID, "expected_round", expectedRound)
			return ErrStaleDebate
		}
		return nil
	})
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func encodeDebate(d *domain.Debate) (string, interface{}, error) {
	history := d.History
	if history == nil {
		history = []domain.Turn{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return "", nil, fmt.Errorf("encode debate history: %w", err)
	}

	var tipsJSON interface{}
	if d.ImprovementTips != nil {
		raw, err := json.Marshal(d.ImprovementTips)
		if err != nil {
			return "", nil, fmt.Errorf("encode improvement tips: %w", err)
		}
		tipsJSON = string(raw)
	}
	return string(historyJSON), tipsJSON, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
