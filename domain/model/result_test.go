package model

import (
	"testing"
)

func TestQueryResult(t *testing.T) {
	t.Parallel()

	var nilResult *QueryResult
	if !nilResult.Empty() || nilResult.Len() != 0 {
		t.Error("expected a nil result to be empty")
	}
	if !(&QueryResult{}).Empty() {
		t.Error("expected a result without columns to be empty")
	}

	result := &QueryResult{
		Columns: []string{"a", "b"},
		Rows:    [][]any{{"x", nil}, {int64(3), []byte("y")}, {1.5, true}},
	}
	if result.Empty() || result.Len() != 3 {
		t.Errorf("unexpected Empty/Len: %v/%d", result.Empty(), result.Len())
	}

	expected := [][]string{{"x", ""}, {"3", "y"}, {"1.5", "true"}}
	got := result.Strings()
	for i := range expected {
		for j := range expected[i] {
			if got[i][j] != expected[i][j] {
				t.Errorf("cell %d,%d: expected %q, got %q", i, j, expected[i][j], got[i][j])
			}
		}
	}
}

func TestQueryResult_NoRows(t *testing.T) {
	t.Parallel()

	result := &QueryResult{Columns: []string{"a"}}
	if result.Empty() {
		t.Error("expected a result with columns to not be empty")
	}
	if result.Len() != 0 || len(result.Strings()) != 0 {
		t.Error("expected no rows")
	}
}
