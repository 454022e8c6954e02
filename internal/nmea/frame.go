package nmea

import "fmt"

const defaultMaxFrameLen = 1024

// Framer splits an incoming byte stream into candidate sentence lines.
//
// Chunks may split a sentence at any byte boundary; the partial tail is
// carried into the next Push. Emitted lines have the terminator (and a
// trailing '\r') stripped. A line already emitted is never emitted again.
type Framer struct {
	maxLen   int
	buf      []byte
	overflow bool
}

func NewFramer(maxLen int) *Framer {
	if maxLen <= 0 {
		maxLen = defaultMaxFrameLen
	}
	return &Framer{maxLen: maxLen}
}

// Push consumes one chunk and returns the complete lines it finished, plus
// any framing errors. A run longer than the max length is reported once as
// ErrFrameTooLong and discarded up to the next delimiter; framing then
// resumes normally.
func (f *Framer) Push(chunk []byte) ([]string, []*IngestError) {
	var lines []string
	var errs []*IngestError

	for _, b := range chunk {
		if b == '\n' {
			if f.overflow {
				// The oversized run ends here; resume framing.
				f.overflow = false
				f.buf = f.buf[:0]
				continue
			}
			line := f.buf
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			if len(line) > 0 {
				lines = append(lines, string(line))
			}
			f.buf = f.buf[:0]
			continue
		}
		if f.overflow {
			continue
		}
		if len(f.buf) >= f.maxLen {
			errs = append(errs, &IngestError{
				Kind:   ErrFrameTooLong,
				Field:  -1,
				Detail: fmt.Sprintf("exceeds %d bytes", f.maxLen),
			})
			f.overflow = true
			f.buf = f.buf[:0]
			continue
		}
		f.buf = append(f.buf, b)
	}

	return lines, errs
}

// Reset drops any carried partial line. Used when the transport reconnects;
// a half sentence from the old connection must not prefix the new stream.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.overflow = false
}
