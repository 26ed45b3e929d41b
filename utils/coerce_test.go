package utils

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlexInt(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"2024", 2024, false},
		{" 2024 ", 2024, false},
		{"100,000,000", 100000000, false},
		{"10.0", 10, false},
		{"10.9", 10, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseFlexInt(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFlexInt(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFlexInt(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFlexInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseFlexIntEmptyIsSentinel(t *testing.T) {
	_, err := ParseFlexInt("  ")
	if !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}
}

func TestParseFlexFloat(t *testing.T) {
	got, err := ParseFlexFloat("1,234.5")
	if err != nil {
		t.Fatalf("ParseFlexFloat: %v", err)
	}
	if got != 1234.5 {
		t.Fatalf("got %v, want 1234.5", got)
	}

	if _, err := ParseFlexFloat(""); !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}
}

func TestParseFlexDateFormats(t *testing.T) {
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-03-15", "2024/03/15", "2024.03.15", "03/15/2024"} {
		got, err := ParseFlexDate(in)
		if err != nil {
			t.Fatalf("ParseFlexDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseFlexDate(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseFlexDate("03-15-2024"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := ParseFlexDate("15/03/2024"); err == nil {
		t.Fatal("expected error for day-first slash date")
	}
}

func TestParseFlexDateSlashDatesAreMonthFirst(t *testing.T) {
	got, err := ParseFlexDate("03/04/2024")
	if err != nil {
		t.Fatalf("ParseFlexDate: %v", err)
	}
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected March 4th, got %v", got)
	}
	if _, err := ParseFlexDate(" "); !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}
}

func TestOptionalString(t *testing.T) {
	if got := OptionalString("  "); got != nil {
		t.Fatalf("expected nil for blank value, got %q", *got)
	}
	got := OptionalString(" 김교수 ")
	if got == nil || *got != "김교수" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}
