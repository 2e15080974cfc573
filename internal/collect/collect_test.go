package collect

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/casefile/internal/model"
)

func TestDetectIssues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.IssueCategory
	}{
		{"none", "Die Parteien einigen sich.", nil},
		{"contradiction", "Im WIDERSPRUCH zur Aussage vom Vortag.", []model.IssueCategory{model.IssueContradiction}},
		{"liability", "Es wird eine Amtspflichtverletzung geltend gemacht.", []model.IssueCategory{model.IssueLiability}},
		{
			"both, one liability issue for two keywords",
			"Widerspruch. Amtshaftung wegen Amtspflichtverletzung.",
			[]model.IssueCategory{model.IssueContradiction, model.IssueLiability},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := DetectIssues(tt.content)
			if len(hits) != len(tt.want) {
				t.Fatalf("Expected %d issues, got %d: %+v", len(tt.want), len(hits), hits)
			}
			for i, hit := range hits {
				if hit.Category != tt.want[i] {
					t.Errorf("issue %d: category %q, want %q", i, hit.Category, tt.want[i])
				}
			}
		})
	}
}

func TestDetectIssues_PriorityAndConfidence(t *testing.T) {
	hits := DetectIssues("widerspruch amtshaftung")
	if len(hits) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(hits))
	}
	if hits[0].Priority != model.PriorityHigh || hits[0].Confidence != 0.72 {
		t.Errorf("contradiction: got %s/%.2f", hits[0].Priority, hits[0].Confidence)
	}
	if hits[1].Priority != model.PriorityCritical || hits[1].Confidence != 0.70 {
		t.Errorf("liability: got %s/%.2f", hits[1].Priority, hits[1].Confidence)
	}
}

func TestEntityID_Deterministic(t *testing.T) {
	a := EntityID("case-1", "doc-1", "deadline", "2026-02-19T09:00:00.000Z")
	b := EntityID("case-1", "doc-1", "deadline", "2026-02-19T09:00:00.000Z")
	c := EntityID("case-1", "doc-2", "deadline", "2026-02-19T09:00:00.000Z")
	if a != b {
		t.Errorf("Expected identical ids, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different documents to yield different ids")
	}
}

func TestExcerpt(t *testing.T) {
	content := "  Erste   Zeile\n\nZweite\tZeile  " + strings.Repeat("ä", 400)
	got := Excerpt(content)
	if strings.Contains(got, "  ") || strings.ContainsAny(got, "\n\t") {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
	if !strings.HasPrefix(got, "Erste Zeile Zweite Zeile ") {
		t.Errorf("unexpected excerpt start %q", got)
	}
	if n := len([]rune(got)); n > 280 {
		t.Errorf("excerpt has %d runes, want <= 280", n)
	}
}

func TestBuildMemoryEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := model.SourceDocument{ID: "d1", Title: "Ladung"}
	ev := BuildMemoryEvent("c1", doc, "Ladung zur Verhandlung", now)

	if ev.Summary != `Document "Ladung" ingested: Ladung zur Verhandlung` {
		t.Errorf("unexpected summary %q", ev.Summary)
	}
	if ev.ID != EntityID("c1", "d1", "memory") || !ev.CreatedAt.Equal(now) {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestBuildDeadline(t *testing.T) {
	doc := model.SourceDocument{ID: "d1", Title: "Beschluss"}
	dl := BuildDeadline("c1", doc, "2026-02-19T09:00:00.000Z")

	if dl.Status != model.DeadlineOpen || dl.Priority != model.PriorityCritical {
		t.Errorf("Expected open critical deadline, got %s/%s", dl.Status, dl.Priority)
	}
	if dl.Title != "Deadline from Beschluss" {
		t.Errorf("unexpected title %q", dl.Title)
	}
	want := []int{20160, 10080, 4320, 1440, 180, 60}
	for i, v := range want {
		if dl.ReminderOffsetsInMinutes[i] != v {
			t.Fatalf("reminder offsets = %v, want %v", dl.ReminderOffsetsInMinutes, want)
		}
	}
	dl.ReminderOffsetsInMinutes[0] = 1
	if model.DefaultReminderOffsets[0] != 20160 {
		t.Error("Expected deadline to own its reminder offsets")
	}
}
