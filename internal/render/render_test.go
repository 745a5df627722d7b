package render

import (
	"strings"
	"testing"
)

func TestTableEmptyInputReturnsSentinel(t *testing.T) {
	if got := Table(nil, nil); got != NoData {
		t.Fatalf("Table(nil, nil) = %q, want %q", got, NoData)
	}
	if got := Table([]string{}, [][]string{}); got != NoData {
		t.Fatalf("Table([], []) = %q, want %q", got, NoData)
	}
}

func TestTableBasicLayout(t *testing.T) {
	got := Table(
		[]string{"Column", "Type"},
		[][]string{
			{"id", "UInt64"},
			{"email", "String"},
		},
	)
	want := strings.Join([]string{
		"+--------+--------+",
		"| Column | Type   |",
		"+--------+--------+",
		"| id     | UInt64 |",
		"| email  | String |",
		"+--------+--------+",
	}, "\n")
	if got != want {
		t.Fatalf("Table() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableColumnCountFollowsHeaders(t *testing.T) {
	got := Table(
		[]string{"a", "b", "c"},
		[][]string{
			{"1"},
			{"1", "2", "3", "4"},
		},
	)
	for i, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "+") {
			if count := strings.Count(line, "+"); count != 4 {
				t.Fatalf("line %d: border separator count = %d, want 4", i, count)
			}
			continue
		}
		if count := strings.Count(line, "|"); count != 4 {
			t.Fatalf("line %d: cell separator count = %d, want 4", i, count)
		}
	}
	if !strings.Contains(got, "| 1 |   |   |") {
		t.Fatalf("short row not padded with empty cells:\n%s", got)
	}
}

func TestTableClampsWideCells(t *testing.T) {
	wide := strings.Repeat("x", 80)
	got := Table([]string{"value"}, [][]string{{wide}})
	if strings.Contains(got, wide) {
		t.Fatal("cell should have been truncated at the clamp width")
	}
	if !strings.Contains(got, strings.Repeat("x", 50)) {
		t.Fatalf("truncated cell missing:\n%s", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if len(line) != 54 {
			t.Fatalf("line width = %d, want 54: %q", len(line), line)
		}
	}
}

func TestTableHeadersOnly(t *testing.T) {
	got := Table([]string{"Table Name", "Engine"}, nil)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3:\n%s", len(lines), got)
	}
	if lines[0] != lines[2] {
		t.Fatalf("top and bottom borders differ:\n%s", got)
	}
}
