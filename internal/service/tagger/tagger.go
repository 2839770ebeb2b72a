package tagger

import (
	"errors"
	"fmt"
	"strings"

	"incidenttagger/internal/catalog"
	"incidenttagger/internal/model"
)

// MaxDisplayed is how many saved frames the tagger shows at most.
const MaxDisplayed = 30

// NoTagsMessage is the report text when nothing is tagged.
const NoTagsMessage = "尚未標記任何違規畫面"

// ErrFrameOutOfRange is returned for a selection index that is not displayed.
var ErrFrameOutOfRange = errors.New("frame index out of range")

// Displayed returns the first limit frames; frames must already be in lexical order.
func Displayed(frames []string, limit int) []string {
	if limit <= 0 || limit > MaxDisplayed {
		limit = MaxDisplayed
	}
	if len(frames) > limit {
		return frames[:limit]
	}
	return frames
}

// ValidateSelection checks index against the displayed frames and violation against the catalog.
func ValidateSelection(frames []string, index int, violation string, cat *catalog.Catalog) error {
	if index < 0 || index >= len(frames) {
		return fmt.Errorf("%w: %d (showing %d frames)", ErrFrameOutOfRange, index, len(frames))
	}
	return cat.Validate(violation)
}

// BuildTags pairs every frame whose selection is not catalog.None with its citation.
// Frames without a selection count as catalog.None. Frame order is preserved;
// selections for indices outside frames are ignored.
func BuildTags(frames []string, selections map[int]string, cat *catalog.Catalog) ([]model.Tag, error) {
	tags := []model.Tag{}
	for i, frame := range frames {
		violation, ok := selections[i]
		if !ok || violation == catalog.None {
			continue
		}
		citation, ok := cat.Lookup(violation)
		if !ok {
			return nil, fmt.Errorf("frame %s: %w: %q", frame, catalog.ErrUnknownViolation, violation)
		}
		tags = append(tags, model.Tag{
			Frame:     frame,
			Violation: violation,
			Citation:  citation,
		})
	}
	return tags, nil
}

// Render formats tags as a markdown list, one line per tag.
func Render(tags []model.Tag) string {
	if len(tags) == 0 {
		return NoTagsMessage
	}

	var b strings.Builder
	for _, tag := range tags {
		fmt.Fprintf(&b, "- **%s** → 🚫 %s ｜📘 法條：%s\n", tag.Frame, tag.Violation, tag.Citation)
	}
	return b.String()
}
