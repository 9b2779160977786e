// Package pool provides the fixed question catalogs sessions are built from.
package pool

import (
	"context"
	"log/slog"
	"strings"
	"text/template"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	appI18n "github.com/pavelanni/skilltest/internal/i18n"
	"github.com/pavelanni/skilltest/internal/model"
)

// Provider returns an ordered, bounded slice of questions for a skill.
type Provider interface {
	Questions(ctx context.Context, skill string, count int) []model.Question
	Size() int
}

// Entry is a catalog question whose prompt is a template over the skill.
type Entry struct {
	ID            string
	Type          model.QuestionType
	Prompt        string // text/template source; {{.Skill}} is the skill label
	MessageID     string // optional translation id for Prompt
	Options       []string
	CorrectAnswer string
	Keywords      []string

	tmpl *template.Template
}

// Catalog is a static, ordered question pool.
type Catalog struct {
	entries []Entry
}

// Size returns the number of questions in the catalog.
func (c *Catalog) Size() int { return len(c.entries) }

// Questions returns the first count catalog entries rendered for skill.
// count is clamped to [0, Size()].
func (c *Catalog) Questions(ctx context.Context, skill string, count int) []model.Question {
	n := max(0, min(count, len(c.entries)))
	out := make([]model.Question, 0, n)
	for _, e := range c.entries[:n] {
		out = append(out, model.Question{
			ID:            e.ID,
			Type:          e.Type,
			Skill:         skill,
			Text:          e.render(ctx, skill),
			Options:       append([]string(nil), e.Options...),
			CorrectAnswer: e.CorrectAnswer,
			Keywords:      append([]string(nil), e.Keywords...),
		})
	}
	return out
}

func (e Entry) render(ctx context.Context, skill string) string {
	data := map[string]any{"Skill": skill}
	if e.MessageID != "" {
		s, err := appI18n.Default(ctx, &i18n.Message{ID: e.MessageID, Other: e.Prompt}, data)
		if err == nil {
			return s
		}
		slog.Warn("prompt translation failed", "id", e.MessageID, "error", err)
	}
	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, data); err != nil {
		slog.Warn("prompt render failed", "question", e.ID, "error", err)
		return e.Prompt
	}
	return sb.String()
}

// Default returns the built-in catalog of generic practice questions.
func Default() *Catalog {
	c, err := newCatalog(builtin)
	if err != nil {
		panic("pool: invalid built-in catalog: " + err.Error())
	}
	return c
}

var builtin = []Entry{
	{
		ID:            "q1",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ1",
		Prompt:        "Which of the following is a primary best practice when working with {{.Skill}}?",
		Options:       []string{"Efficient Resource Management", "Ignoring Documentation", "Hardcoding Values", "Manual Testing Only"},
		CorrectAnswer: "Efficient Resource Management",
	},
	{
		ID:            "q2",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ2",
		Prompt:        "In a professional environment, how is {{.Skill}} typically version controlled?",
		Options:       []string{"Using Git", "Emailing zip files", "Saving on Desktop", "No version control needed"},
		CorrectAnswer: "Using Git",
	},
	{
		ID:            "q3",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ3",
		Prompt:        "Which tool is most commonly associated with testing {{.Skill}} code?",
		Options:       []string{"Unit Testing Frameworks", "Notepad", "Calculator", "Social Media"},
		CorrectAnswer: "Unit Testing Frameworks",
	},
	{
		ID:            "q4",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ4",
		Prompt:        "What is the main advantage of using {{.Skill}} in modern development?",
		Options:       []string{"Scalability", "Slower performance", "Harder to maintain", "Limited community support"},
		CorrectAnswer: "Scalability",
	},
	{
		ID:            "q5",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ5",
		Prompt:        "What is a common error to avoid when implementing {{.Skill}}?",
		Options:       []string{"Memory leaks", "Proper indentation", "Commenting code", "Using meaningful variables"},
		CorrectAnswer: "Memory leaks",
	},
	{
		ID:            "q6",
		Type:          model.TypeMultipleChoice,
		MessageID:     "PoolQ6",
		Prompt:        "How should sensitive configuration data in {{.Skill}} be managed?",
		Options:       []string{"Environment variables", "Hardcoded in source", "Public comments", "Plain text files"},
		CorrectAnswer: "Environment variables",
	},
	{
		ID:        "q7",
		Type:      model.TypeShortAnswer,
		MessageID: "PoolQ7",
		Prompt:    "Which tool do teams use to keep track of changes to {{.Skill}} code, and what kind of system is it?",
		Keywords:  []string{"git", "version"},
	},
	{
		ID:        "q8",
		Type:      model.TypeShortAnswer,
		MessageID: "PoolQ8",
		Prompt:    "How do you make sure a change to {{.Skill}} code does not break existing behaviour?",
		Keywords:  []string{"test"},
	},
}
