package scanner

import (
	"testing"

	"discord-extractor/models"

	"github.com/google/go-cmp/cmp"
)

func TestRankOrdersByCountThenName(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"A": 3, "B": 3, "C": 1}
	names := map[string]string{"A": "Bob", "B": "alice", "C": "Cara"}

	got := rank(counts, names)
	want := []models.Author{
		{ID: "B", Name: "alice", Count: 3}, // ties break case-insensitively by name
		{ID: "A", Name: "Bob", Count: 3},
		{ID: "C", Name: "Cara", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("author ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankFallsBackToIDForMissingName(t *testing.T) {
	t.Parallel()

	got := rank(map[string]int{"X": 2}, map[string]string{})
	want := []models.Author{{ID: "X", Name: "X", Count: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}
