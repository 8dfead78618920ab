package model

import (
	"testing"
)

func TestNewHeader(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"col1", "col2", "col3"})

	if len(header) != 3 {
		t.Errorf("expected header length 3, got %d", len(header))
	}
	expected := []string{"col1", "col2", "col3"}
	for i, v := range header {
		if v != expected[i] {
			t.Errorf("expected header[%d] to be %s, got %s", i, expected[i], v)
		}
	}
}

func TestHeader_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		h1       Header
		h2       Header
		expected bool
	}{
		{"equal", NewHeader([]string{"a", "b"}), NewHeader([]string{"a", "b"}), true},
		{"different order", NewHeader([]string{"a", "b"}), NewHeader([]string{"b", "a"}), false},
		{"different length", NewHeader([]string{"a"}), NewHeader([]string{"a", "b"}), false},
		{"case differs", NewHeader([]string{"a"}), NewHeader([]string{"A"}), false},
		{"both empty", NewHeader(nil), NewHeader([]string{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.h1.Equal(tt.h2); got != tt.expected {
				t.Errorf("Equal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHeader_Columns(t *testing.T) {
	t.Parallel()

	columns := NewHeader([]string{"id", "Unnamed: 1"}).Columns()

	if len(columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(columns))
	}
	for i, name := range []string{"id", "Unnamed: 1"} {
		if columns[i].Name != name {
			t.Errorf("expected column %d to be %q, got %q", i, name, columns[i].Name)
		}
		if columns[i].Type != ColumnTypeText {
			t.Errorf("expected column %d to be TEXT, got %s", i, columns[i].Type)
		}
	}
}

func TestColumnType_String(t *testing.T) {
	t.Parallel()

	if got := ColumnTypeText.String(); got != "TEXT" {
		t.Errorf("expected TEXT, got %s", got)
	}
}
