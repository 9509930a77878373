package money

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := map[string]Amount{
		"12.34": 1234,
		"12.3":  1230,
		"12":    1200,
		"0.01":  1,
		"40.50": 4050,
		"-10":   -1000,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q)=%d err=%v want %d", in, got, err, want)
		}
	}
	if _, err := Parse("12.345"); !errors.Is(err, ErrTooPrecise) {
		t.Fatalf("expected ErrTooPrecise got %v", err)
	}
	if _, err := Parse("abc"); !errors.Is(err, ErrNotNumber) {
		t.Fatalf("expected ErrNotNumber got %v", err)
	}
	if a, err := Parse("1000000000000"); err != nil || a != Units(1_000_000_000_000) {
		t.Fatalf("upper bound should be accepted: %d %v", a, err)
	}
	if _, err := Parse("1000000000000.01"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange got %v", err)
	}
	if _, err := Parse("-92233720368547758.08"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange got %v", err)
	}
	if _, err := Parse("12.300"); err != nil {
		t.Fatalf("trailing zeros should be accepted: %v", err)
	}
}

func TestJSONRoundTripAsNumber(t *testing.T) {
	b, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{A: 4050})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":40.5}` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var v struct {
		A Amount `json:"a"`
	}
	if err := json.Unmarshal([]byte(`{"a":"70"}`), &v); err != nil || v.A != 7000 {
		t.Fatalf("quoted input: got %d err=%v", v.A, err)
	}
	if err := json.Unmarshal([]byte(`{"a":1.005}`), &v); err == nil {
		t.Fatal("expected precision error")
	}
}

func TestStringAndPercent(t *testing.T) {
	if Amount(-1000).String() != "-10.00" {
		t.Fatalf("got %s", Amount(-1000).String())
	}
	if Percent(Units(1), Units(3)) != 33 {
		t.Fatalf("got %d", Percent(Units(1), Units(3)))
	}
	if Percent(Units(2), Units(3)) != 67 {
		t.Fatalf("got %d", Percent(Units(2), Units(3)))
	}
	if Percent(Units(5), 0) != 0 {
		t.Fatal("division by zero budget should yield 0")
	}
}
