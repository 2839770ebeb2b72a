package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Decoder back-ends accepted by DECODER.
const (
	DecoderOpenCV = "opencv"
	DecoderFFmpeg = "ffmpeg"
)

type Config struct {
	Port               int    `env:"PORT"                 envDefault:"8080"`
	WorkspaceDirectory string `env:"WORKSPACE_DIR"        envDefault:"./violations_output"`
	UploadDirectory    string `env:"UPLOAD_DIR"           envDefault:"./uploads"`
	StaticDirectory    string `env:"STATIC_DIR"           envDefault:"./static"`
	LogDirectory       string `env:"LOG_DIR"              envDefault:"./logs"`
	DatabasePath       string `env:"DB_PATH"              envDefault:":memory:"`
	SampleInterval     int    `env:"SAMPLE_INTERVAL"      envDefault:"15"` // save every Nth decoded frame
	MaxDisplayedFrames int    `env:"MAX_DISPLAYED_FRAMES" envDefault:"30"`
	MaxUploadMB        int64  `env:"MAX_UPLOAD_MB"        envDefault:"512"`
	Decoder            string `env:"DECODER"              envDefault:"opencv"`
	FFmpegPath         string `env:"FFMPEG_PATH"          envDefault:"ffmpeg"`
	FFprobePath        string `env:"FFPROBE_PATH"         envDefault:"ffprobe"`
	CatalogPath        string `env:"CATALOG_PATH"`
	OTelEndpoint       string `env:"OTEL_ENDPOINT"`
	LogLevel           string `env:"LOG_LEVEL"            envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the sampler and tagger cannot work with.
func (c *Config) Validate() error {
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.MaxDisplayedFrames <= 0 {
		return fmt.Errorf("MAX_DISPLAYED_FRAMES must be positive, got %d", c.MaxDisplayedFrames)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	switch c.Decoder {
	case DecoderOpenCV, DecoderFFmpeg:
	default:
		return fmt.Errorf("unknown DECODER %q (want %s or %s)", c.Decoder, DecoderOpenCV, DecoderFFmpeg)
	}
	return nil
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
