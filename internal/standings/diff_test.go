package standings

import (
	"testing"
)

func TestDiff(t *testing.T) {
	previous := NewSnapshot([]Row{
		{Rank: "1", Name: "Club A", Points: "20"},
		{Rank: "2", Name: "Club B", Points: "18"},
		{Rank: "3", Name: "Club C", Points: "16"},
	}, "", "", testTime)

	current := []Row{
		{Rank: "1", Name: "Club B", Points: "20"},
		{Rank: "2", Name: "Club A", Points: "20"},
		{Rank: "3", Name: "Club D", Points: "12"},
	}

	result := Diff(previous, current)

	want := []Change{
		{Name: "Club B", Type: ChangeRank, OldValue: "2", NewValue: "1"},
		{Name: "Club B", Type: ChangePoints, OldValue: "18", NewValue: "20"},
		{Name: "Club A", Type: ChangeRank, OldValue: "1", NewValue: "2"},
		{Name: "Club D", Type: ChangeAdded, NewValue: "3"},
		{Name: "Club C", Type: ChangeRemoved, OldValue: "3"},
	}

	if len(result.Changes) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(result.Changes), len(want), result.Changes)
	}
	for i := range want {
		if result.Changes[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, result.Changes[i], want[i])
		}
	}
}

func TestDiff_NoChanges(t *testing.T) {
	rows := []Row{{Rank: "1", Name: "Club A", Points: "20"}}
	previous := NewSnapshot(rows, "", "", testTime)

	result := Diff(previous, rows)

	if !result.Empty() {
		t.Errorf("expected no changes, got %+v", result.Changes)
	}
}

func TestDiff_NilPrevious(t *testing.T) {
	rows := []Row{
		{Rank: "1", Name: "Club A", Points: "20"},
		{Rank: "2", Name: "Club B", Points: "18"},
	}

	result := Diff(nil, rows)

	if len(result.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(result.Changes))
	}
	for _, c := range result.Changes {
		if c.Type != ChangeAdded {
			t.Errorf("change %+v should be %q", c, ChangeAdded)
		}
	}
}
