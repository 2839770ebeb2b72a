package sampler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"incidenttagger/internal/logger"
	"incidenttagger/internal/metrics"
	"incidenttagger/internal/model"
	"incidenttagger/internal/video"
)

// DefaultInterval is the sampling stride: frames 15, 30, 45, ... are saved.
const DefaultInterval = 15

// FrameSink receives sampled frames. Workspace implements it.
type FrameSink interface {
	Save(name string, data []byte) error
}

// Result summarises one sampling run.
type Result struct {
	Saved   int
	Decoded int
	FPS     float64
	Frames  []string
}

// Sampler writes every Nth decoded frame as a JPEG named after the capture instant.
type Sampler struct {
	interval int
	now      func() time.Time
	logger   *logger.Logger
	onSaved  func(name string)
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock overrides the clock used for frame names.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithSavedHook registers a callback run after every saved frame.
func WithSavedHook(fn func(name string)) Option {
	return func(s *Sampler) { s.onSaved = fn }
}

// New returns a Sampler saving every interval-th frame. Non-positive values
// fall back to DefaultInterval.
func New(interval int, logger *logger.Logger, opts ...Option) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Sampler{
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the sampling stride.
func (s *Sampler) Interval() int {
	return s.interval
}

// Sample decodes src until it is exhausted and saves frames interval, 2*interval, ...
// into sink. The stride counts decoded frames and ignores the frame rate.
//
// A decode failure ends the loop like end of stream does; it is only logged.
// Errors are returned for a failed JPEG encode or write, and for ctx cancellation.
func (s *Sampler) Sample(ctx context.Context, src video.Source, sink FrameSink) (Result, error) {
	ctx, span := otel.Tracer("sampler").Start(ctx, "Sampler.Sample",
		trace.WithAttributes(attribute.Int("sample.interval", s.interval)))
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	start := time.Now()
	result := Result{FPS: src.FPS(), Frames: []string{}}

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return result, fail(err)
		}

		result.Decoded++
		metrics.FramesDecodedTotal.Inc()

		// only every Nth frame is kept
		if result.Decoded%s.interval != 0 {
			continue
		}

		data, err := src.JPEG()
		if err != nil {
			return result, fail(fmt.Errorf("encode frame %d: %w", result.Decoded, err))
		}

		name := model.FrameName(s.now())
		if err := sink.Save(name, data); err != nil {
			return result, fail(err)
		}

		result.Saved++
		result.Frames = append(result.Frames, name)
		metrics.FramesSavedTotal.Inc()
		if s.onSaved != nil {
			s.onSaved(name)
		}
	}

	if err := src.Err(); err != nil {
		s.logger.Warning("Decoding stopped after %d frames: %v", result.Decoded, err)
	}

	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("frames.decoded", result.Decoded),
		attribute.Int("frames.saved", result.Saved),
		attribute.Float64("video.fps", result.FPS),
	)
	s.logger.Info("Sampled %d of %d frames (every %d, %.2f fps)", result.Saved, result.Decoded, s.interval, result.FPS)

	return result, nil
}
