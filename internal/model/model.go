package model

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidInput reports a request field that cannot be coerced.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound reports an unknown or expired session code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCodeCollision reports that a generated code is already taken.
	ErrCodeCollision = errors.New("session code collision")
)

// QuestionType selects how an answer is compared.
type QuestionType string

const (
	// TypeMultipleChoice answers must equal the correct option exactly.
	TypeMultipleChoice QuestionType = "multiple_choice"
	// TypeShortAnswer answers must contain every keyword.
	TypeShortAnswer QuestionType = "short_answer"
)

// Status is the pass/fail verdict of a submission.
type Status string

const (
	StatusPass Status = "Pass"
	StatusFail Status = "Fail"
)

// Question is a single quiz item.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Skill         string       `json:"skill"`
	Text          string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Keywords      []string     `json:"keywords,omitempty"`
}

// Session is a generated test, looked up by its code.
type Session struct {
	Code       string     `json:"id"`
	Skill      string     `json:"skills"`
	Difficulty string     `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Clone returns a copy that shares no slices with s.
func (s Session) Clone() Session {
	c := s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		q.Keywords = append([]string(nil), q.Keywords...)
		c.Questions[i] = q
	}
	return c
}

// Redacted returns a copy without correct answers or keywords.
func (s Session) Redacted() Session {
	c := s.Clone()
	for i := range c.Questions {
		c.Questions[i].CorrectAnswer = ""
		c.Questions[i].Keywords = nil
	}
	return c
}

// SubmissionResult is one scored submission.
type SubmissionResult struct {
	TestID        string    `json:"testId"`
	CandidateName string    `json:"candidateName"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percentage    int       `json:"percentage"`
	Status        Status    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// NormalizeCode trims surrounding whitespace and lowercases a session code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
