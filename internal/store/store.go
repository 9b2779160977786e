package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/skilltest/internal/model"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed SessionStore and SubmissionLog.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// from splitting across the pool.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS test_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		skill TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		time_limit INTEGER NOT NULL,
		questions TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		test_id TEXT NOT NULL,
		candidate_name TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		percentage INTEGER NOT NULL,
		status TEXT NOT NULL,
		submitted_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts a session. The UNIQUE code column turns a second insert of
// the same code into a no-op, reported as a collision.
func (s *Store) Put(sess model.Session) error {
	code := model.NormalizeCode(sess.Code)
	if code == "" {
		return fmt.Errorf("%w: empty session code", model.ErrInvalidInput)
	}
	questions, err := json.Marshal(sess.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO test_sessions (code, skill, difficulty, time_limit, questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO NOTHING`,
		code, sess.Skill, sess.Difficulty, sess.TimeLimit, string(questions), sess.CreatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrCodeCollision, code)
	}
	return nil
}

// Get returns the session stored under the normalized code.
func (s *Store) Get(code string) (model.Session, error) {
	code = model.NormalizeCode(code)
	row := s.db.QueryRow(
		`SELECT code, skill, difficulty, time_limit, questions, created_at
		 FROM test_sessions WHERE code = ?`, code,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, fmt.Errorf("%w: %q", model.ErrSessionNotFound, code)
	}
	return sess, err
}

// List returns all sessions, oldest first.
func (s *Store) List() ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT code, skill, difficulty, time_limit, questions, created_at
		 FROM test_sessions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := []model.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (model.Session, error) {
	var sess model.Session
	var questions string
	if err := row.Scan(&sess.Code, &sess.Skill, &sess.Difficulty, &sess.TimeLimit, &questions, &sess.CreatedAt); err != nil {
		return model.Session{}, err
	}
	if err := json.Unmarshal([]byte(questions), &sess.Questions); err != nil {
		return model.Session{}, fmt.Errorf("decode questions of %s: %w", sess.Code, err)
	}
	if sess.Questions == nil {
		sess.Questions = []model.Question{}
	}
	return sess, nil
}

// Append records a submission result.
func (s *Store) Append(r model.SubmissionResult) error {
	at := r.SubmittedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO submissions (test_id, candidate_name, score, total, percentage, status, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.TestID, r.CandidateName, r.Score, r.Total, r.Percentage, r.Status, at,
	)
	return err
}

// All returns every submission in insertion order.
func (s *Store) All() ([]model.SubmissionResult, error) {
	rows, err := s.db.Query(
		`SELECT test_id, candidate_name, score, total, percentage, status, submitted_at
		 FROM submissions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []model.SubmissionResult{}
	for rows.Next() {
		var r model.SubmissionResult
		if err := rows.Scan(&r.TestID, &r.CandidateName, &r.Score, &r.Total, &r.Percentage, &r.Status, &r.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
