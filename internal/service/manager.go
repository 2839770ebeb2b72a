package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"incidenttagger/internal/catalog"
	"incidenttagger/internal/config"
	"incidenttagger/internal/dto"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/metrics"
	"incidenttagger/internal/model"
	"incidenttagger/internal/repository"
	"incidenttagger/internal/service/sampler"
	"incidenttagger/internal/service/storage"
	"incidenttagger/internal/service/tagger"
	"incidenttagger/internal/video"
)

// ExtractionDoneMessage is shown once sampling has finished, whatever the outcome.
const ExtractionDoneMessage = "擷取完成，共儲存 %d 張畫面。"

// ExportPlaceholder is returned by the report export action.
const ExportPlaceholder = "未來可整合匯出 PDF 或 CSV 功能"

// Broadcaster pushes an encoded event to live viewers.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Manager owns the session state: the workspace, the current selections and
// the catalog. Submissions and selection changes are serialised.
type Manager struct {
	workspace  *storage.Workspace
	opener     video.Opener
	sampler    *sampler.Sampler
	selections repository.SelectionRepository
	catalog    *catalog.Catalog
	events     Broadcaster
	logger     *logger.Logger

	uploadDir    string
	maxDisplayed int

	mu sync.Mutex
}

func NewManager(workspace *storage.Workspace, opener video.Opener, selections repository.SelectionRepository,
	cat *catalog.Catalog, events Broadcaster, cfg *config.Config, logger *logger.Logger, opts ...sampler.Option) *Manager {
	m := &Manager{
		workspace:    workspace,
		opener:       opener,
		selections:   selections,
		catalog:      cat,
		events:       events,
		logger:       logger,
		uploadDir:    cfg.UploadDirectory,
		maxDisplayed: cfg.MaxDisplayedFrames,
	}
	opts = append(opts, sampler.WithSavedHook(m.frameSaved))
	m.sampler = sampler.New(cfg.SampleInterval, logger, opts...)

	m.logger.Info("🎬 Manager started - saving every %d frame(s) into %s", m.sampler.Interval(), workspace.Dir())
	return m
}

func (m *Manager) Workspace() *storage.Workspace {
	return m.workspace
}

func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// SubmitVideo replaces the session with a new video: the workspace is reset,
// selections are cleared and every Nth frame of the video is saved.
//
// A video that cannot be opened yields zero frames, not an error. Errors are
// returned for a failed reset, upload write, frame write or ctx cancellation.
func (m *Manager) SubmitVideo(ctx context.Context, r io.Reader, filename string) (*dto.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logger.With("video", filename)

	if err := m.workspace.Reset(); err != nil {
		metrics.VideosSubmittedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := m.selections.DeleteAll(); err != nil {
		metrics.VideosSubmittedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TagsCurrent.Set(0)

	path, err := m.storeUpload(r)
	if err != nil {
		metrics.VideosSubmittedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warning("Failed to remove upload %s: %v", path, err)
		}
	}()

	log.Info("📹 Video stored as %s, extracting frames", filepath.Base(path))
	m.emit(dto.EventExtractionStarted, map[string]string{"video": filename})

	outcome := "ok"
	res := sampler.Result{Frames: []string{}}
	src, err := m.opener.Open(ctx, path)
	if err != nil {
		log.Warning("Cannot open video: %v", err)
		outcome = "unreadable"
	} else {
		res, err = m.sampler.Sample(ctx, src, m.workspace)
		if cerr := src.Close(); cerr != nil {
			log.Warning("Closing video source: %v", cerr)
		}
		if err != nil {
			metrics.VideosSubmittedTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("sample %s: %w", filename, err)
		}
	}
	metrics.VideosSubmittedTotal.WithLabelValues(outcome).Inc()

	result := &dto.ExtractionResult{
		SavedCount:   res.Saved,
		DecodedCount: res.Decoded,
		FPS:          res.FPS,
		Frames:       tagger.Displayed(res.Frames, m.maxDisplayed),
		Message:      fmt.Sprintf(ExtractionDoneMessage, res.Saved),
	}
	m.emit(dto.EventExtractionDone, result)

	return result, nil
}

// Frames lists the displayed frames with their current selector values.
func (m *Manager) Frames() (*dto.FramesData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total, err := m.workspace.Count()
	if err != nil {
		return nil, err
	}
	frames, err := m.displayed()
	if err != nil {
		return nil, err
	}
	selections, err := m.selections.GetAll()
	if err != nil {
		return nil, err
	}

	data := &dto.FramesData{
		Frames:     make([]dto.FrameInfo, 0, len(frames)),
		Options:    m.catalog.Options(),
		Total:      total,
		MaxDisplay: m.displayLimit(),
	}
	for i, name := range frames {
		selection, ok := selections[i]
		if !ok {
			selection = catalog.None
		}
		data.Frames = append(data.Frames, dto.FrameInfo{
			Index:     i,
			Name:      name,
			URL:       "/api/frames/view?image=" + url.QueryEscape(name),
			Selection: selection,
		})
	}
	return data, nil
}

// Select records the selector value for a displayed frame and returns the
// rebuilt tag list. Choosing catalog.None clears the frame's tag.
func (m *Manager) Select(index int, violation string) (*dto.TagsData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames, err := m.displayed()
	if err != nil {
		return nil, err
	}
	if err := tagger.ValidateSelection(frames, index, violation, m.catalog); err != nil {
		return nil, err
	}

	if violation == catalog.None {
		err = m.selections.Delete(index)
	} else {
		err = m.selections.Set(&model.Selection{FrameIndex: index, Violation: violation})
	}
	if err != nil {
		return nil, err
	}

	tags, err := m.tags(frames)
	if err != nil {
		return nil, err
	}
	metrics.TagsCurrent.Set(float64(len(tags)))
	m.emit(dto.EventTagsUpdated, tags)

	return &dto.TagsData{Tags: tags}, nil
}

// Report returns the tag list with its markdown rendering.
func (m *Manager) Report() (*dto.TagsData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames, err := m.displayed()
	if err != nil {
		return nil, err
	}
	tags, err := m.tags(frames)
	if err != nil {
		return nil, err
	}
	return &dto.TagsData{Tags: tags, Markdown: tagger.Render(tags)}, nil
}

func (m *Manager) displayLimit() int {
	if m.maxDisplayed <= 0 || m.maxDisplayed > tagger.MaxDisplayed {
		return tagger.MaxDisplayed
	}
	return m.maxDisplayed
}

func (m *Manager) displayed() ([]string, error) {
	return m.workspace.List(m.displayLimit())
}

func (m *Manager) tags(frames []string) ([]model.Tag, error) {
	selections, err := m.selections.GetAll()
	if err != nil {
		return nil, err
	}
	return tagger.BuildTags(frames, selections, m.catalog)
}

func (m *Manager) storeUpload(r io.Reader) (string, error) {
	if err := os.MkdirAll(m.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(m.uploadDir, "upload_"+uuid.NewString()+".mp4")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func (m *Manager) frameSaved(name string) {
	m.emit(dto.EventFrameSaved, map[string]string{"frame": name})
}

func (m *Manager) emit(eventType string, payload interface{}) {
	if m.events == nil {
		return
	}
	msg, err := dto.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		m.logger.Error("Error encoding %s event: %v", eventType, err)
		return
	}
	m.events.Broadcast(msg)
}
