// Package exam builds test sessions and scores submissions against them.
package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/skilltest/internal/model"
	"github.com/pavelanni/skilltest/internal/pool"
	"github.com/pavelanni/skilltest/internal/store"
)

const (
	DefaultSkill        = "General Programming"
	DefaultDifficulty   = "Medium"
	DefaultNumQuestions = 5
	DefaultTimeLimit    = 10
	DefaultCodeLength   = 8

	maxCodeAttempts = 5
)

// SessionParams is an admin's request for a new test session.
type SessionParams struct {
	Skill        string        `json:"skills"`
	Difficulty   string        `json:"difficulty"`
	NumQuestions model.Numeric `json:"numQuestions"`
	TimeLimit    model.Numeric `json:"timeLimit"`
}

// Factory assembles sessions from a question pool and stores them.
type Factory struct {
	pool    pool.Provider
	store   store.SessionStore
	newCode func() string
	now     func() time.Time
}

// NewFactory returns a Factory that generates codes of codeLength
// characters (DefaultCodeLength when codeLength is out of range).
func NewFactory(p pool.Provider, s store.SessionStore, codeLength int) *Factory {
	if codeLength <= 0 || codeLength > 32 {
		codeLength = DefaultCodeLength
	}
	return &Factory{
		pool:    p,
		store:   s,
		newCode: func() string { return randomCode(codeLength) },
		now:     time.Now,
	}
}

// randomCode returns the first n hex digits of a random UUID.
func randomCode(n int) string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToLower(hex[:n])
}

// CreateSession applies defaults, selects questions and stores the new
// session under a fresh code. A code that is already taken is regenerated.
func (f *Factory) CreateSession(ctx context.Context, p SessionParams) (model.Session, error) {
	skill := strings.TrimSpace(p.Skill)
	if skill == "" {
		skill = DefaultSkill
	}
	difficulty := strings.TrimSpace(p.Difficulty)
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	numQuestions, err := p.NumQuestions.Int(DefaultNumQuestions)
	if err != nil {
		return model.Session{}, fmt.Errorf("numQuestions: %w", err)
	}
	timeLimit, err := p.TimeLimit.Int(DefaultTimeLimit)
	if err != nil {
		return model.Session{}, fmt.Errorf("timeLimit: %w", err)
	}
	if timeLimit <= 0 {
		return model.Session{}, fmt.Errorf("timeLimit: %w: must be positive, got %d", model.ErrInvalidInput, timeLimit)
	}

	sess := model.Session{
		Skill:      skill,
		Difficulty: difficulty,
		TimeLimit:  timeLimit,
		Questions:  f.pool.Questions(ctx, skill, max(0, numQuestions)),
		CreatedAt:  f.now(),
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		sess.Code = model.NormalizeCode(f.newCode())
		err = f.store.Put(sess)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, model.ErrCodeCollision) {
			return model.Session{}, fmt.Errorf("store session: %w", err)
		}
		slog.Warn("session code collision, regenerating", "code", sess.Code, "attempt", attempt)
	}
	return model.Session{}, fmt.Errorf("no free session code after %d attempts: %w", maxCodeAttempts, err)
}
