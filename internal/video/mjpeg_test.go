package video

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	img.Set(0, 0, color.Gray{Y: 255 - shade})

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestScanJPEG_SplitsConcatenatedStream(t *testing.T) {
	frames := [][]byte{encodeJPEG(t, 10), encodeJPEG(t, 120), encodeJPEG(t, 240)}

	var stream bytes.Buffer
	stream.WriteString("junk")
	for _, f := range frames {
		stream.Write(f)
	}

	// one byte per read exercises every partial-buffer branch
	scanner := NewJPEGScanner(iotest.OneByteReader(&stream))

	var got [][]byte
	for scanner.Scan() {
		got = append(got, append([]byte(nil), scanner.Bytes()...))
	}
	require.NoError(t, scanner.Err())
	require.Len(t, got, len(frames))

	for i := range frames {
		assert.Equal(t, frames[i], got[i])
		_, err := jpeg.Decode(bytes.NewReader(got[i]))
		assert.NoError(t, err)
	}
}

func TestScanJPEG_Truncated(t *testing.T) {
	frame := encodeJPEG(t, 50)
	scanner := NewJPEGScanner(bytes.NewReader(frame[:len(frame)-10]))

	assert.False(t, scanner.Scan())
	assert.True(t, errors.Is(scanner.Err(), ErrTruncatedFrame))
}

func TestScanJPEG_Empty(t *testing.T) {
	scanner := NewJPEGScanner(bytes.NewReader(nil))
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())
}

func TestReaderSource(t *testing.T) {
	var stream bytes.Buffer
	for i := 0; i < 4; i++ {
		stream.Write(encodeJPEG(t, uint8(i*40)))
	}

	src := NewReaderSource(&stream, 25)
	defer src.Close()

	_, err := src.JPEG()
	assert.Error(t, err, "no frame before Next")

	count := 0
	for src.Next() {
		data, err := src.JPEG()
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, jpegHeader))
		count++
	}
	assert.Equal(t, 4, count)
	assert.NoError(t, src.Err())
	assert.Equal(t, 25.0, src.FPS())
}

func TestReaderSource_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	r := io.MultiReader(bytes.NewReader(encodeJPEG(t, 1)), iotest.ErrReader(boom))

	src := NewReaderSource(r, 0)
	assert.True(t, src.Next())
	assert.False(t, src.Next())
	assert.ErrorIs(t, src.Err(), boom)
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"25/1", 25, false},
		{"30000/1001\n", 30000.0 / 1001.0, false},
		{"29.97", 29.97, false},
		{"0/0", 0, true},
		{"abc", 0, true},
		{"x/1", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFrameRate(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}
