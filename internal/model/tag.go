package model

// Tag associates a saved frame with a violation and its legal citation.
type Tag struct {
	Frame     string `json:"frame"`
	Violation string `json:"violation"`
	Citation  string `json:"citation"`
}

// Selection is the selector value held for one displayed frame.
type Selection struct {
	FrameIndex int    `json:"index"`
	Violation  string `json:"violation"`
}
