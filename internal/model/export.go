package model

import "time"

// Export is the top-level JSON structure written by the export command.
type Export struct {
	ExportedAt  time.Time          `json:"exported_at"`
	Sessions    []Session          `json:"sessions"`
	Submissions []SubmissionResult `json:"submissions"`
	PassCount   int                `json:"pass_count"`
	FailCount   int                `json:"fail_count"`
}

// NewExport builds an Export and tallies the verdicts.
func NewExport(at time.Time, sessions []Session, results []SubmissionResult) Export {
	e := Export{ExportedAt: at, Sessions: sessions, Submissions: results}
	if e.Sessions == nil {
		e.Sessions = []Session{}
	}
	if e.Submissions == nil {
		e.Submissions = []SubmissionResult{}
	}
	for _, r := range results {
		if r.Status == StatusPass {
			e.PassCount++
		} else {
			e.FailCount++
		}
	}
	return e
}
