package day

import (
	"encoding/json"
	"testing"
)

func TestParseAndArithmetic(t *testing.T) {
	t.Parallel()
	start := MustParse("2024-03-10")
	if got := start.AddDays(-7).String(); got != "2024-03-03" {
		t.Fatalf("expected 2024-03-03, got %s", got)
	}
	if got := start.AddDays(-1).String(); got != "2024-03-09" {
		t.Fatalf("expected 2024-03-09, got %s", got)
	}
	if got := InclusiveDays(start, MustParse("2024-03-17")); got != 8 {
		t.Fatalf("expected 8 inclusive days, got %d", got)
	}
	if got := InclusiveDays(start, start.AddDays(-3)); got != 1 {
		t.Fatalf("expected minimum of 1 day, got %d", got)
	}
	if _, err := Parse("2024-13-01"); err == nil {
		t.Fatalf("expected invalid month to fail")
	}
}

func TestLeapYearAndWeekKey(t *testing.T) {
	t.Parallel()
	d := MustParse("2024-03-01")
	if got := d.AddDays(-1).String(); got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
	if got := MustParse("2021-01-03").ISOWeekKey(); got != "2020-W53" {
		t.Fatalf("expected 2020-W53, got %s", got)
	}
	if got := MustParse("2024-03-10").ISOWeekKey(); got != "2024-W10" {
		t.Fatalf("expected 2024-W10, got %s", got)
	}
}

func TestJSONRoundTripKeepsZeroAsEmpty(t *testing.T) {
	t.Parallel()
	type wrapper struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	raw, err := json.Marshal(wrapper{Start: MustParse("2024-03-10")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"start":"2024-03-10","end":""}` {
		t.Fatalf("unexpected json: %s", raw)
	}
	var back wrapper
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Start != MustParse("2024-03-10") || !back.End.IsZero() {
		t.Fatalf("unexpected decoded value: %+v", back)
	}
}
