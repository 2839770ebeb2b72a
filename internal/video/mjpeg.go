package video

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// MaxJPEGSize bounds a single frame in an MJPEG stream.
const MaxJPEGSize = 32 << 20

// ErrTruncatedFrame is reported when the stream ends inside a frame.
var ErrTruncatedFrame = errors.New("truncated jpeg frame")

// ScanJPEG is a bufio.SplitFunc that cuts a concatenated MJPEG stream into
// whole JPEG images, from SOI (FFD8) to EOI (FFD9). Bytes before an SOI are dropped.
func ScanJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, jpegHeader)
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// keep a trailing 0xFF, it may be the first half of an SOI
		if n := len(data); n > 0 && data[n-1] == 0xFF {
			return n - 1, nil, nil
		}
		return len(data), nil, nil
	}

	end := bytes.Index(data[start+len(jpegHeader):], jpegFooter)
	if end < 0 {
		if atEOF {
			return len(data), nil, ErrTruncatedFrame
		}
		// drop garbage before the SOI and ask for more
		return start, nil, nil
	}

	stop := start + len(jpegHeader) + end + len(jpegFooter)
	return stop, data[start:stop], nil
}

// NewJPEGScanner returns a Scanner over r yielding one JPEG image per token.
func NewJPEGScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256<<10), MaxJPEGSize)
	scanner.Split(ScanJPEG)
	return scanner
}
