package nmea

import "fmt"

// ErrorKind classifies why a line was rejected. All kinds are per-line and
// non-fatal: the pipeline counts the rejection and moves on.
type ErrorKind int

const (
	ErrFrameTooLong ErrorKind = iota
	ErrMalformedFrame
	ErrChecksumMismatch
	ErrFieldDecode

	// ErrorKindCount sizes per-kind counter tables.
	ErrorKindCount
)

func (k ErrorKind) String() string {
	switch k {
	case ErrFrameTooLong:
		return "frame_too_long"
	case ErrMalformedFrame:
		return "malformed_frame"
	case ErrChecksumMismatch:
		return "checksum_mismatch"
	case ErrFieldDecode:
		return "field_decode"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// IngestError is a rejected line. Field is the zero-based index of the
// offending field for ErrFieldDecode and -1 otherwise.
type IngestError struct {
	Kind   ErrorKind
	Field  int
	Detail string
}

func (e *IngestError) Error() string {
	if e.Kind == ErrFieldDecode {
		return fmt.Sprintf("nmea: %s field=%d: %s", e.Kind, e.Field, e.Detail)
	}
	if e.Detail == "" {
		return "nmea: " + e.Kind.String()
	}
	return fmt.Sprintf("nmea: %s: %s", e.Kind, e.Detail)
}

func errMalformed(detail string) *IngestError {
	return &IngestError{Kind: ErrMalformedFrame, Field: -1, Detail: detail}
}

func errChecksum(detail string) *IngestError {
	return &IngestError{Kind: ErrChecksumMismatch, Field: -1, Detail: detail}
}

func errField(index int, detail string) *IngestError {
	return &IngestError{Kind: ErrFieldDecode, Field: index, Detail: detail}
}
