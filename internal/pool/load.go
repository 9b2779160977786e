package pool

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"text/template"

	"github.com/pavelanni/skilltest/internal/model"
)

// EntryImport is the JSON shape of one question in a catalog file.
type EntryImport struct {
	ID            string             `json:"id"`
	Type          model.QuestionType `json:"type"`
	Prompt        string             `json:"question"`
	Options       []string           `json:"options,omitempty"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
	Keywords      []string           `json:"keywords,omitempty"`
}

// LoadCatalogFile reads a JSON catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadCatalog reads a JSON array of questions. Entries without a type are
// multiple choice.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var imports []EntryImport
	if err := json.NewDecoder(r).Decode(&imports); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	entries := make([]Entry, 0, len(imports))
	for _, qi := range imports {
		typ := qi.Type
		if typ == "" {
			typ = model.TypeMultipleChoice
		}
		entries = append(entries, Entry{
			ID:            qi.ID,
			Type:          typ,
			Prompt:        qi.Prompt,
			Options:       qi.Options,
			CorrectAnswer: qi.CorrectAnswer,
			Keywords:      qi.Keywords,
		})
	}
	return newCatalog(entries)
}

func newCatalog(entries []Entry) (*Catalog, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %q", i+1, e.ID)
		}
		seen[e.ID] = true

		tmpl, err := template.New(e.ID).Option("missingkey=zero").Parse(e.Prompt)
		if err != nil {
			return nil, fmt.Errorf("question %q: parse prompt: %w", e.ID, err)
		}
		e.tmpl = tmpl
		out = append(out, e)
	}
	return &Catalog{entries: out}, nil
}

func validate(e Entry) error {
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.Prompt == "" {
		return fmt.Errorf("%q: missing question text", e.ID)
	}
	switch e.Type {
	case model.TypeMultipleChoice:
		if len(e.Options) == 0 {
			return fmt.Errorf("%q: multiple choice question without options", e.ID)
		}
		if !slices.Contains(e.Options, e.CorrectAnswer) {
			return fmt.Errorf("%q: correct answer %q is not one of the options", e.ID, e.CorrectAnswer)
		}
	case model.TypeShortAnswer:
		if len(e.Keywords) == 0 {
			return fmt.Errorf("%q: short answer question without keywords", e.ID)
		}
		if slices.Contains(e.Keywords, "") {
			return fmt.Errorf("%q: empty keyword", e.ID)
		}
	default:
		return fmt.Errorf("%q: unknown question type %q", e.ID, e.Type)
	}
	return nil
}
