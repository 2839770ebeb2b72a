package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidenttagger/internal/catalog"
	"incidenttagger/internal/config"
	"incidenttagger/internal/dto"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/repository/sqlite"
	"incidenttagger/internal/service/sampler"
	"incidenttagger/internal/service/storage"
	"incidenttagger/internal/service/tagger"
	"incidenttagger/internal/video"
)

type countingSource struct {
	total   int
	current int
}

func (s *countingSource) Next() bool {
	if s.current >= s.total {
		return false
	}
	s.current++
	return true
}

func (s *countingSource) JPEG() ([]byte, error) { return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil }
func (s *countingSource) FPS() float64          { return 30 }
func (s *countingSource) Err() error            { return nil }
func (s *countingSource) Close() error          { return nil }

type recorder struct {
	mu     sync.Mutex
	events []dto.Event
}

func (r *recorder) Broadcast(message []byte) {
	var ev dto.Event
	if err := json.Unmarshal(message, &ev); err != nil {
		panic(err)
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// frameOpener returns a source of n frames and records the path it was asked to open.
func frameOpener(n int, opened *string) video.Opener {
	return video.OpenerFunc(func(ctx context.Context, path string) (video.Source, error) {
		if opened != nil {
			*opened = path
		}
		return &countingSource{total: n}, nil
	})
}

func tickingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestManager(t *testing.T, opener video.Opener) (*Manager, *recorder, *config.Config) {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		WorkspaceDirectory: filepath.Join(root, "violations_output"),
		UploadDirectory:    filepath.Join(root, "uploads"),
		SampleInterval:     15,
		MaxDisplayedFrames: 30,
	}

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events := &recorder{}
	m := NewManager(storage.NewWorkspace(cfg.WorkspaceDirectory), opener, sqlite.NewSelectionRepository(db),
		catalog.Default(), events, cfg, logger.Nop(), sampler.WithClock(tickingClock()))
	return m, events, cfg
}

func TestManager_SubmitVideo(t *testing.T) {
	var opened string
	m, events, cfg := newTestManager(t, frameOpener(150, &opened))

	res, err := m.SubmitVideo(context.Background(), strings.NewReader("fake mp4"), "crash.mp4")
	require.NoError(t, err)

	assert.Equal(t, 10, res.SavedCount)
	assert.Equal(t, 150, res.DecodedCount)
	assert.Len(t, res.Frames, 10)
	assert.Equal(t, "擷取完成，共儲存 10 張畫面。", res.Message)

	assert.True(t, strings.HasSuffix(opened, ".mp4"))
	_, err = os.Stat(opened)
	assert.True(t, os.IsNotExist(err), "upload should be removed after sampling")

	entries, err := os.ReadDir(cfg.WorkspaceDirectory)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	types := events.types()
	require.NotEmpty(t, types)
	assert.Equal(t, dto.EventExtractionStarted, types[0])
	assert.Equal(t, dto.EventExtractionDone, types[len(types)-1])
	assert.Len(t, types, 12)
}

func TestManager_SubmitResetsWorkspaceAndSelections(t *testing.T) {
	m, _, cfg := newTestManager(t, frameOpener(45, nil))

	require.NoError(t, os.MkdirAll(cfg.WorkspaceDirectory, 0755))
	stale := filepath.Join(cfg.WorkspaceDirectory, "frame_19990101_000000_000000.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := m.SubmitVideo(context.Background(), strings.NewReader("v1"), "a.mp4")
	require.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	_, err = m.Select(0, "闖紅燈")
	require.NoError(t, err)

	_, err = m.SubmitVideo(context.Background(), strings.NewReader("v2"), "b.mp4")
	require.NoError(t, err)

	report, err := m.Report()
	require.NoError(t, err)
	assert.Empty(t, report.Tags)
	assert.Equal(t, tagger.NoTagsMessage, report.Markdown)
}

func TestManager_UnreadableVideoStillDone(t *testing.T) {
	opener := video.OpenerFunc(func(ctx context.Context, path string) (video.Source, error) {
		return nil, errors.New("moov atom not found")
	})
	m, _, _ := newTestManager(t, opener)

	res, err := m.SubmitVideo(context.Background(), strings.NewReader("garbage"), "broken.mp4")
	require.NoError(t, err)
	assert.Zero(t, res.SavedCount)
	assert.Empty(t, res.Frames)
	assert.Equal(t, fmt.Sprintf(ExtractionDoneMessage, 0), res.Message)

	frames, err := m.Frames()
	require.NoError(t, err)
	assert.Empty(t, frames.Frames)
}

func TestManager_FramesCappedAtThirty(t *testing.T) {
	m, _, _ := newTestManager(t, frameOpener(15*40, nil))

	res, err := m.SubmitVideo(context.Background(), strings.NewReader("long"), "long.mp4")
	require.NoError(t, err)
	assert.Equal(t, 40, res.SavedCount)
	assert.Len(t, res.Frames, 30)

	frames, err := m.Frames()
	require.NoError(t, err)
	assert.Len(t, frames.Frames, 30)
	assert.Equal(t, 40, frames.Total)
	assert.Equal(t, []string{"無", "闖紅燈", "未保持安全距離", "逆向行駛", "違規變換車道"}, frames.Options)
	for i, f := range frames.Frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, catalog.None, f.Selection)
		assert.Contains(t, f.URL, f.Name)
	}
}

func TestManager_SelectAndReport(t *testing.T) {
	m, events, _ := newTestManager(t, frameOpener(150, nil))

	res, err := m.SubmitVideo(context.Background(), strings.NewReader("clip"), "clip.mp4")
	require.NoError(t, err)

	tags, err := m.Select(2, "闖紅燈")
	require.NoError(t, err)
	require.Len(t, tags.Tags, 1)
	assert.Equal(t, res.Frames[2], tags.Tags[0].Frame)
	assert.Equal(t, "§53：駕駛人不依號誌指示行駛", tags.Tags[0].Citation)
	assert.Equal(t, dto.EventTagsUpdated, events.types()[len(events.types())-1])

	report, err := m.Report()
	require.NoError(t, err)
	assert.Equal(t, "- **"+res.Frames[2]+"** → 🚫 闖紅燈 ｜📘 法條：§53：駕駛人不依號誌指示行駛\n", report.Markdown)

	frames, err := m.Frames()
	require.NoError(t, err)
	assert.Equal(t, "闖紅燈", frames.Frames[2].Selection)

	// back to 無 removes the tag
	tags, err = m.Select(2, catalog.None)
	require.NoError(t, err)
	assert.Empty(t, tags.Tags)
}

func TestManager_SelectRejectsBadInput(t *testing.T) {
	m, _, _ := newTestManager(t, frameOpener(30, nil))

	_, err := m.SubmitVideo(context.Background(), strings.NewReader("clip"), "clip.mp4")
	require.NoError(t, err)

	_, err = m.Select(2, "闖紅燈")
	assert.ErrorIs(t, err, tagger.ErrFrameOutOfRange)

	_, err = m.Select(0, "超速")
	assert.ErrorIs(t, err, catalog.ErrUnknownViolation)
}
