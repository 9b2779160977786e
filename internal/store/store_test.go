package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/skilltest/internal/model"
)

type backend interface {
	SessionStore
	SubmissionLog
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends runs fn against every store implementation.
func backends(t *testing.T, fn func(t *testing.T, b backend)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestStore(t)) })
}

func testSession(code string) model.Session {
	return model.Session{
		Code:       code,
		Skill:      "Go",
		Difficulty: "Medium",
		TimeLimit:  10,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Questions: []model.Question{
			{ID: "q1", Type: model.TypeMultipleChoice, Skill: "Go", Text: "Pick one", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{ID: "q2", Type: model.TypeShortAnswer, Skill: "Go", Text: "Explain", Keywords: []string{"git"}},
		},
	}
}

func TestPutGet(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		if err := b.Put(testSession("abcd1234")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		for _, code := range []string{"abcd1234", "ABCD1234", "  AbCd1234 \n"} {
			got, err := b.Get(code)
			if err != nil {
				t.Fatalf("Get(%q): %v", code, err)
			}
			if got.Code != "abcd1234" {
				t.Errorf("Get(%q).Code = %q", code, got.Code)
			}
			if len(got.Questions) != 2 {
				t.Fatalf("expected 2 questions, got %d", len(got.Questions))
			}
			if got.Questions[0].CorrectAnswer != "a" || got.Questions[1].Keywords[0] != "git" {
				t.Errorf("questions not preserved: %+v", got.Questions)
			}
			if got.TimeLimit != 10 || got.Difficulty != "Medium" || got.Skill != "Go" {
				t.Errorf("fields not preserved: %+v", got)
			}
		}
	})
}

func TestPutNormalizesCode(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		if err := b.Put(testSession(" XY12 ")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if _, err := b.Get("xy12"); err != nil {
			t.Errorf("Get(xy12): %v", err)
		}
		if err := b.Put(testSession("   ")); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for blank code, got %v", err)
		}
	})
}

func TestGetNotFound(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		_, err := b.Get("missing")
		if !errors.Is(err, model.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestPutCollision(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		first := testSession("dup00001")
		if err := b.Put(first); err != nil {
			t.Fatalf("Put: %v", err)
		}
		second := testSession("DUP00001")
		second.Skill = "Rust"
		if err := b.Put(second); !errors.Is(err, model.ErrCodeCollision) {
			t.Fatalf("expected ErrCodeCollision, got %v", err)
		}

		got, err := b.Get("dup00001")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Skill != "Go" {
			t.Errorf("collision overwrote the stored session: skill %q", got.Skill)
		}
	})
}

func TestListInsertionOrder(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		list, err := b.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %d", len(list))
		}

		codes := []string{"ccc", "aaa", "bbb"}
		for _, c := range codes {
			if err := b.Put(testSession(c)); err != nil {
				t.Fatalf("Put(%s): %v", c, err)
			}
		}
		list, err = b.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 sessions, got %d", len(list))
		}
		for i, c := range codes {
			if list[i].Code != c {
				t.Errorf("list[%d] = %q, want %q", i, list[i].Code, c)
			}
		}
	})
}

func TestMemoryIsolatesCallers(t *testing.T) {
	m := NewMemory()
	s := testSession("iso")
	if err := m.Put(s); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Questions[0].CorrectAnswer = "b"

	got, _ := m.Get("iso")
	if got.Questions[0].CorrectAnswer != "a" {
		t.Error("mutating the input after Put changed the stored session")
	}
	got.Questions[0].Options[0] = "zzz"

	again, _ := m.Get("iso")
	if again.Questions[0].Options[0] != "a" {
		t.Error("mutating a Get result changed the stored session")
	}
}

func TestSubmissionLog(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		all, err := b.All()
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected empty log, got %d", len(all))
		}

		results := []model.SubmissionResult{
			{TestID: "t1", CandidateName: "Ann", Score: 2, Total: 2, Percentage: 100, Status: model.StatusPass, SubmittedAt: time.Now()},
			{TestID: "t1", CandidateName: "Ann", Score: 0, Total: 2, Percentage: 0, Status: model.StatusFail, SubmittedAt: time.Now()},
			{TestID: "t2", CandidateName: "Guest", Score: 1, Total: 3, Percentage: 33, Status: model.StatusFail},
		}
		for _, r := range results {
			if err := b.Append(r); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}

		all, err = b.All()
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != len(results) {
			t.Fatalf("expected %d results, got %d", len(results), len(all))
		}
		for i, want := range results {
			got := all[i]
			if got.TestID != want.TestID || got.CandidateName != want.CandidateName ||
				got.Score != want.Score || got.Total != want.Total ||
				got.Percentage != want.Percentage || got.Status != want.Status {
				t.Errorf("result %d = %+v, want %+v", i, got, want)
			}
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	backends(t, func(t *testing.T, b backend) {
		const workers = 8
		const perWorker = 20

		var wg sync.WaitGroup
		var collisions sync.Map
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perWorker {
					// Every worker races on the same shared code once.
					if err := b.Put(testSession("shared")); err != nil {
						if !errors.Is(err, model.ErrCodeCollision) {
							t.Errorf("Put(shared): %v", err)
						}
						collisions.Store(fmt.Sprintf("%d-%d", w, i), true)
					}
					code := fmt.Sprintf("w%d-%d", w, i)
					if err := b.Put(testSession(code)); err != nil {
						t.Errorf("Put(%s): %v", code, err)
						continue
					}
					if _, err := b.Get(code); err != nil {
						t.Errorf("Get(%s) after Put: %v", code, err)
					}
					if err := b.Append(model.SubmissionResult{TestID: code, Status: model.StatusFail}); err != nil {
						t.Errorf("Append: %v", err)
					}
				}
			}()
		}
		wg.Wait()

		n := 0
		collisions.Range(func(_, _ any) bool { n++; return true })
		if n != workers*perWorker-1 {
			t.Errorf("expected %d collisions on the shared code, got %d", workers*perWorker-1, n)
		}

		list, _ := b.List()
		if len(list) != workers*perWorker+1 {
			t.Errorf("expected %d sessions, got %d", workers*perWorker+1, len(list))
		}
		all, _ := b.All()
		if len(all) != workers*perWorker {
			t.Errorf("expected %d results, got %d", workers*perWorker, len(all))
		}
	})
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skilltest.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Put(testSession("keep0001")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Append(model.SubmissionResult{TestID: "keep0001", CandidateName: "Bo", Status: model.StatusPass}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get("KEEP0001")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !got.CreatedAt.Equal(testSession("").CreatedAt) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
	all, _ := s.All()
	if len(all) != 1 || all[0].CandidateName != "Bo" {
		t.Errorf("unexpected log after reopen: %+v", all)
	}
}

func TestExport(t *testing.T) {
	m := NewMemory()
	_ = m.Put(testSession("e1"))
	_ = m.Append(model.SubmissionResult{TestID: "e1", Status: model.StatusPass})
	_ = m.Append(model.SubmissionResult{TestID: "e1", Status: model.StatusFail})

	at := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	exp, err := Export(m, at)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(exp.Sessions) != 1 || len(exp.Submissions) != 2 {
		t.Errorf("unexpected export sizes: %d sessions, %d submissions", len(exp.Sessions), len(exp.Submissions))
	}
	if exp.PassCount != 1 || exp.FailCount != 1 || !exp.ExportedAt.Equal(at) {
		t.Errorf("unexpected export summary: %+v", exp)
	}
}
