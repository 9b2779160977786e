package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/skilltest/internal/model"
)

// Source is anything that can enumerate sessions and submissions.
type Source interface {
	List() ([]model.Session, error)
	All() ([]model.SubmissionResult, error)
}

// Export gathers every session and submission from src into one document.
func Export(src Source, at time.Time) (model.Export, error) {
	sessions, err := src.List()
	if err != nil {
		return model.Export{}, fmt.Errorf("list sessions: %w", err)
	}
	results, err := src.All()
	if err != nil {
		return model.Export{}, fmt.Errorf("list submissions: %w", err)
	}
	return model.NewExport(at, sessions, results), nil
}
