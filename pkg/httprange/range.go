// Package httprange parses single-range HTTP Range headers for video delivery.
package httprange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrUnsatisfiable indicates a Range header that was present but malformed or
// out of bounds for the file. Callers must answer with 416 and a
// "Content-Range: bytes */<size>" header.
var ErrUnsatisfiable = errors.New("range not satisfiable")

// Only the single-range form is supported. Multi-range requests
// (comma-separated) fail the match and are treated as unsatisfiable.
var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// ByteRange is an inclusive byte interval within a file of known size.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value for a 206 response.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ContentRangeUnsatisfied formats the Content-Range header value for a 416 response.
func ContentRangeUnsatisfied(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// Parse interprets an optional Range header against the total file size.
// A nil result with a nil error means the full file should be served.
// A missing start bound defaults to 0 and a missing end bound to size-1.
func Parse(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	match := rangePattern.FindStringSubmatch(header)
	if match == nil {
		return nil, ErrUnsatisfiable
	}

	start := int64(0)
	end := size - 1

	if match[1] != "" {
		parsed, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, ErrUnsatisfiable
		}
		start = parsed
	}

	if match[2] != "" {
		parsed, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			return nil, ErrUnsatisfiable
		}
		end = parsed
	}

	if start > end || end > size-1 {
		return nil, ErrUnsatisfiable
	}

	return &ByteRange{Start: start, End: end}, nil
}
