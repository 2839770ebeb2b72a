package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidenttagger_videos_submitted_total",
		Help: "Total number of submitted videos, by outcome",
	}, []string{"outcome"})

	FramesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incidenttagger_frames_decoded_total",
		Help: "Total number of frames decoded across all videos",
	})

	FramesSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incidenttagger_frames_saved_total",
		Help: "Total number of sampled frames written to the workspace",
	})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "incidenttagger_extraction_duration_seconds",
		Help:    "Duration of frame extraction for one video",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	})

	TagsCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidenttagger_tags_current",
		Help: "Number of tags in the current report",
	})

	EventViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidenttagger_event_viewers",
		Help: "Number of connected websocket viewers",
	})
)
