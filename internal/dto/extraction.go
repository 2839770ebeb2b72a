package dto

// ExtractionResult is returned after a submitted video has been sampled.
type ExtractionResult struct {
	SavedCount   int      `json:"savedCount"`
	DecodedCount int      `json:"decodedCount"`
	FPS          float64  `json:"fps"`
	Frames       []string `json:"frames"`
	Message      string   `json:"message"`
}
