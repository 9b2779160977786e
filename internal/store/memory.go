package store

import (
	"fmt"
	"sync"

	"github.com/pavelanni/skilltest/internal/model"
)

// SessionStore maps normalized session codes to sessions.
type SessionStore interface {
	// Put stores s under its code. It returns model.ErrCodeCollision
	// when the code is already taken and never overwrites.
	Put(s model.Session) error
	// Get normalizes code and returns model.ErrSessionNotFound when
	// nothing is stored under it.
	Get(code string) (model.Session, error)
	// List returns all sessions in insertion order.
	List() ([]model.Session, error)
}

// SubmissionLog is an append-only sequence of results.
type SubmissionLog interface {
	Append(r model.SubmissionResult) error
	All() ([]model.SubmissionResult, error)
}

// Memory is a process-lifetime SessionStore and SubmissionLog.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	order    []string
	results  []model.SubmissionResult
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]model.Session)}
}

func (m *Memory) Put(s model.Session) error {
	code := model.NormalizeCode(s.Code)
	if code == "" {
		return fmt.Errorf("%w: empty session code", model.ErrInvalidInput)
	}
	s = s.Clone()
	s.Code = code

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[code]; ok {
		return fmt.Errorf("%w: %s", model.ErrCodeCollision, code)
	}
	m.sessions[code] = s
	m.order = append(m.order, code)
	return nil
}

func (m *Memory) Get(code string) (model.Session, error) {
	code = model.NormalizeCode(code)

	m.mu.RLock()
	s, ok := m.sessions[code]
	m.mu.RUnlock()
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %q", model.ErrSessionNotFound, code)
	}
	return s.Clone(), nil
}

func (m *Memory) List() ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Session, 0, len(m.order))
	for _, code := range m.order {
		out = append(out, m.sessions[code].Clone())
	}
	return out, nil
}

func (m *Memory) Append(r model.SubmissionResult) error {
	m.mu.Lock()
	m.results = append(m.results, r)
	m.mu.Unlock()
	return nil
}

func (m *Memory) All() ([]model.SubmissionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SubmissionResult{}, m.results...), nil
}
