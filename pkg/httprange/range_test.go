package httprange

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseNoHeader(t *testing.T) {
	r, err := Parse("", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil range for missing header, got %+v", r)
	}
}

func TestParseBothBounds(t *testing.T) {
	r, err := Parse("bytes=200-399", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start != 200 || r.End != 399 {
		t.Fatalf("expected 200-399, got %d-%d", r.Start, r.End)
	}
	if r.Length() != 200 {
		t.Fatalf("expected length 200, got %d", r.Length())
	}
	if got := r.ContentRange(1000); got != "bytes 200-399/1000" {
		t.Fatalf("unexpected content range: %q", got)
	}
}

func TestParseOmittedBounds(t *testing.T) {
	cases := []struct {
		header     string
		start, end int64
	}{
		{"bytes=500-", 500, 999},
		{"bytes=-499", 0, 499},
		{"bytes=-", 0, 999},
		{"bytes=0-0", 0, 0},
		{"bytes=999-999", 999, 999},
	}

	for _, tc := range cases {
		r, err := Parse(tc.header, 1000)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.header, err)
		}
		if r.Start != tc.start || r.End != tc.end {
			t.Fatalf("%s: expected %d-%d, got %d-%d", tc.header, tc.start, tc.end, r.Start, r.End)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	headers := []string{
		"bytes=abc",
		"bytes=10-5",
		"bytes=0-1000",
		"bytes=1000-",
		"bytes=0-99,200-299",
		"bytes 0-99",
		"items=0-99",
		"bytes=1.5-20",
	}

	for _, header := range headers {
		if _, err := Parse(header, 1000); !errors.Is(err, ErrUnsatisfiable) {
			t.Fatalf("%s: expected ErrUnsatisfiable, got %v", header, err)
		}
	}
}

func TestParseAllValidPairs(t *testing.T) {
	const size = 64
	for start := int64(0); start < size; start++ {
		for end := start; end < size; end++ {
			header := "bytes=" + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10)
			r, err := Parse(header, size)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", header, err)
			}
			if r.Start != start || r.End != end {
				t.Fatalf("%s: got %d-%d", header, r.Start, r.End)
			}
		}
	}
}

func TestContentRangeUnsatisfied(t *testing.T) {
	if got := ContentRangeUnsatisfied(1000); got != "bytes */1000" {
		t.Fatalf("unexpected value: %q", got)
	}
}
