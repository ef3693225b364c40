package table

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestNewPadsAndTruncatesRows(t *testing.T) {
	tb := New("x", []string{"a", "b", "c"}, [][]string{{"1"}, {"1", "2", "3", "4"}})
	if tb.Len() != 2 {
		t.Fatalf("len = %d, want 2", tb.Len())
	}
	if got := tb.Row(0); len(got) != 3 || got[1] != "" {
		t.Fatalf("row 0 not padded: %q", got)
	}
	if got := tb.Row(1); len(got) != 3 || got[2] != "3" {
		t.Fatalf("row 1 not truncated: %q", got)
	}
}

func TestColumnLookupIsSpellingTolerant(t *testing.T) {
	tb := New("x", []string{"\ufeffid", "neighbourhood group", "Construction year", "room type"}, nil)
	if !tb.Has("id", "neighbourhood_group", "Construction_year", "room_type") {
		t.Fatalf("expected tolerant lookup to resolve all columns, have %v", tb.Columns())
	}
	if tb.Has("price") {
		t.Fatalf("price should be absent")
	}
	if tb.Strings("price") != nil || tb.Floats("price") != nil {
		t.Fatalf("absent column should return nil")
	}
}

func TestFloatsCoercesToNaN(t *testing.T) {
	tb := New("x", []string{"price"}, [][]string{{"$1,060"}, {" $966 "}, {"n/a"}, {""}, {"-12.5"}, {"NaN"}})
	got := tb.Floats("price")
	want := []float64{1060, 966, math.NaN(), math.NaN(), -12.5, math.NaN()}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Fatalf("row %d: got %v, want NaN", i, got[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Fatalf("row %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	tb := New("x", []string{"name", "price"}, [][]string{{"Loft, SoHo", "120"}})
	var buf bytes.Buffer
	if err := tb.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "name,price\n") || !strings.Contains(out, `"Loft, SoHo",120`) {
		t.Fatalf("unexpected csv: %q", out)
	}
}
