package exam

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/skilltest/internal/model"
	"github.com/pavelanni/skilltest/internal/pool"
	"github.com/pavelanni/skilltest/internal/store"
)

// Config holds runtime engine parameters set via CLI flags.
type Config struct {
	CodeLength    int
	PassThreshold float64
}

// Submission is a candidate's answers to one session.
type Submission struct {
	TestID        string        `json:"testId"`
	CandidateName string        `json:"candidateName"`
	Answers       model.Answers `json:"answers"`
}

// Service is the engine's entry point for the transport layer.
type Service struct {
	sessions  store.SessionStore
	log       store.SubmissionLog
	factory   *Factory
	evaluator *Evaluator
	now       func() time.Time
}

// NewService wires a Service around the given stores and pool.
func NewService(sessions store.SessionStore, log store.SubmissionLog, p pool.Provider, cfg Config) *Service {
	return &Service{
		sessions:  sessions,
		log:       log,
		factory:   NewFactory(p, sessions, cfg.CodeLength),
		evaluator: NewEvaluator(cfg.PassThreshold),
		now:       time.Now,
	}
}

// CreateSession creates and stores a new session.
func (s *Service) CreateSession(ctx context.Context, p SessionParams) (model.Session, error) {
	sess, err := s.factory.CreateSession(ctx, p)
	if err != nil {
		return model.Session{}, err
	}
	slog.Info("created test session",
		"code", sess.Code,
		"skill", sess.Skill,
		"difficulty", sess.Difficulty,
		"questions", len(sess.Questions),
		"time_limit", sess.TimeLimit,
	)
	return sess, nil
}

// GetSession looks up a session by code.
func (s *Service) GetSession(_ context.Context, code string) (model.Session, error) {
	return s.sessions.Get(code)
}

// Submit scores a submission against its session and records the result.
// An unknown code fails with model.ErrSessionNotFound and records nothing.
func (s *Service) Submit(_ context.Context, sub Submission) (model.SubmissionResult, error) {
	sess, err := s.sessions.Get(sub.TestID)
	if err != nil {
		return model.SubmissionResult{}, err
	}
	res := s.evaluator.Evaluate(sess, sub.Answers, sub.CandidateName)
	res.SubmittedAt = s.now()
	if err := s.log.Append(res); err != nil {
		return model.SubmissionResult{}, fmt.Errorf("record submission: %w", err)
	}
	slog.Info("scored submission",
		"code", res.TestID,
		"candidate", res.CandidateName,
		"score", res.Score,
		"total", res.Total,
		"status", res.Status,
	)
	return res, nil
}

// Submissions returns every recorded result in submission order.
func (s *Service) Submissions(_ context.Context) ([]model.SubmissionResult, error) {
	return s.log.All()
}

// Sessions returns every stored session in creation order.
func (s *Service) Sessions(_ context.Context) ([]model.Session, error) {
	return s.sessions.List()
}
