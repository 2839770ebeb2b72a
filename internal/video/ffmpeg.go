package video

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// waitDelay bounds how long reaping ffmpeg waits on its stderr after exit.
const waitDelay = 2 * time.Second

// FFmpeg decodes videos by piping them through the ffmpeg binary as MJPEG.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpeg returns an Opener using the given binaries.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Open starts ffmpeg for path. The frame rate is probed first; a failed probe
// leaves FPS at zero and is not an error.
func (f *FFmpeg) Open(ctx context.Context, path string) (Source, error) {
	fps, _ := f.probeFPS(ctx, path)

	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-v", "error",
		"-i", path,
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "2",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return newPipeSource(cmd, stdout, &stderr, fps), nil
}

// probeFPS asks ffprobe for the first video stream's r_frame_rate ("30000/1001").
func (f *FFmpeg) probeFPS(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return ParseFrameRate(string(output))
}

// ParseFrameRate parses ffprobe rates such as "25/1", "30000/1001" or "29.97".
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("parse frame rate %q: zero denominator", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	return v, nil
}

// pipeSource reads frames from a running ffmpeg process. The process is
// reaped as soon as its output ends, so its exit status and stderr are
// available to Err without racing exec's copy goroutine.
type pipeSource struct {
	*readerSource
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
	waited  bool
	waitErr error
	closed  bool
}

func newPipeSource(cmd *exec.Cmd, stdout io.ReadCloser, stderr *bytes.Buffer, fps float64) *pipeSource {
	return &pipeSource{
		readerSource: &readerSource{scanner: NewJPEGScanner(stdout), fps: fps},
		cmd:          cmd,
		stderr:       stderr,
	}
}

func (p *pipeSource) Next() bool {
	if p.closed {
		return false
	}
	if p.readerSource.Next() {
		return true
	}
	p.wait()
	return false
}

// wait reaps ffmpeg. After a scan error the process may still be writing, so it is killed first.
func (p *pipeSource) wait() {
	if p.waited {
		return
	}
	p.waited = true

	if p.readerSource.Err() != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if err := p.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
			p.waitErr = fmt.Errorf("ffmpeg: %w: %s", err, msg)
		} else {
			p.waitErr = fmt.Errorf("ffmpeg: %w", err)
		}
	}
}

// Err reports a broken stream first, then a failed ffmpeg exit. It is only
// meaningful once Next has returned false.
func (p *pipeSource) Err() error {
	if err := p.readerSource.Err(); err != nil {
		return err
	}
	return p.waitErr
}

// Close stops ffmpeg. A process still running because the caller stopped
// reading early is killed and its exit status ignored.
func (p *pipeSource) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if !p.waited {
		p.waited = true
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.cmd.Wait()
	}
	return nil
}

// NewReaderSource wraps an already decoded MJPEG stream as a Source.
func NewReaderSource(r io.Reader, fps float64) Source {
	return &readerSource{scanner: NewJPEGScanner(r), fps: fps}
}

type readerSource struct {
	scanner *bufio.Scanner
	frame   []byte
	fps     float64
}

func (r *readerSource) Next() bool {
	if !r.scanner.Scan() {
		r.frame = nil
		return false
	}
	r.frame = r.scanner.Bytes()
	return true
}

func (r *readerSource) JPEG() ([]byte, error) {
	if r.frame == nil {
		return nil, fmt.Errorf("no current frame")
	}
	out := make([]byte, len(r.frame))
	copy(out, r.frame)
	return out, nil
}

func (r *readerSource) FPS() float64 { return r.fps }

func (r *readerSource) Err() error { return r.scanner.Err() }

func (r *readerSource) Close() error { return nil }
