package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/study"
)

func testStats() *study.Statistics {
	items := []study.Brief{
		{TopicID: 1, Word: "abandon", Translation: "放弃"},
		{TopicID: 2, Word: "ability", Translation: "能力"},
		{TopicID: 3, Word: "absent", Translation: "缺席的"},
	}
	return &study.Statistics{
		Day:         "2026-10-17",
		FailMap:     map[int64]int{2: 1, 3: 4},
		UseTimeMap:  map[int64]int64{1: 2000, 2: 5000, 3: 9000},
		TotalTimeMs: 125_000,
		Items:       items,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testStats())
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testStats()).View(80, 24)
	for _, want := range []string{"Session complete!", "Words: 3", "Clean: 1", "2:05", "absent"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "abandon") {
		t.Error("clean words must not be listed under needs work")
	}
}

func TestSummaryScreen_MissedOrder(t *testing.T) {
	got := missedWords(testStats())
	if len(got) != 2 || got[0].Word != "absent" || got[1].Word != "ability" {
		t.Errorf("missedWords = %+v, want absent then ability", got)
	}
}

func TestSummaryScreen_NilStats(t *testing.T) {
	if view := New(nil).View(80, 24); !strings.Contains(view, "Nothing studied") {
		t.Errorf("unexpected view for nil stats: %q", view)
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		_, cmd := New(testStats()).Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			t.Fatalf("expected a command for key %q", code)
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("key %q: expected PopScreenMsg", code)
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	if hints := New(testStats()).KeyHints(); len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
