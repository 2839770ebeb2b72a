package dto

import "incidenttagger/internal/model"

// FramesData lists the frames shown in the tagger with the selector choices.
type FramesData struct {
	Frames     []FrameInfo `json:"frames"`
	Options    []string    `json:"options"`
	Total      int         `json:"total"`
	MaxDisplay int         `json:"maxDisplay"`
}

// FrameInfo is one displayed frame and its current selection.
type FrameInfo struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Selection string `json:"selection"`
}

// SelectionRequest is the body of a "selection changed" call.
type SelectionRequest struct {
	Index     int    `json:"index"`
	Violation string `json:"violation"`
}

// TagsData carries the tag list, optionally with its rendered report.
type TagsData struct {
	Tags     []model.Tag `json:"tags"`
	Markdown string      `json:"markdown,omitempty"`
}
