package exam

import (
	"strings"

	"github.com/pavelanni/skilltest/internal/model"
)

// DefaultPassThreshold is the minimum score/total ratio for a Pass.
const DefaultPassThreshold = 0.60

// Evaluator scores answers against a session's questions.
type Evaluator struct {
	passThreshold float64
}

// NewEvaluator returns an Evaluator. A threshold outside (0, 1] falls back
// to DefaultPassThreshold.
func NewEvaluator(passThreshold float64) *Evaluator {
	if passThreshold <= 0 || passThreshold > 1 {
		passThreshold = DefaultPassThreshold
	}
	return &Evaluator{passThreshold: passThreshold}
}

// Evaluate scores answers against every question of sess, in order.
// Missing or non-text answers count as wrong.
func (e *Evaluator) Evaluate(sess model.Session, answers model.Answers, candidate string) model.SubmissionResult {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		candidate = "Guest"
	}

	score := 0
	for _, q := range sess.Questions {
		if credit(q, answers[q.ID]) {
			score++
		}
	}
	total := len(sess.Questions)

	res := model.SubmissionResult{
		TestID:        sess.Code,
		CandidateName: candidate,
		Score:         score,
		Total:         total,
		Status:        model.StatusFail,
	}
	if total > 0 {
		res.Percentage = score * 100 / total
		if float64(score)/float64(total) >= e.passThreshold {
			res.Status = model.StatusPass
		}
	}
	return res
}

func credit(q model.Question, a model.AnswerValue) bool {
	text, ok := a.AsText()
	if !ok {
		return false
	}
	switch q.Type {
	case model.TypeShortAnswer:
		return containsAllKeywords(text, q.Keywords)
	default:
		return text == q.CorrectAnswer
	}
}

// containsAllKeywords reports whether every keyword occurs in text,
// ignoring case. A question without keywords can never be credited.
func containsAllKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	text = strings.ToLower(text)
	for _, k := range keywords {
		if !strings.Contains(text, strings.ToLower(k)) {
			return false
		}
	}
	return true
}
