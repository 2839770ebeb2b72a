package model

import (
	"fmt"
	"time"
)

// FramePrefix and FrameExt bracket the timestamp in a saved frame name.
const (
	FramePrefix = "frame_"
	FrameExt    = ".jpg"
)

// FrameName builds frame_<YYYYMMDD_HHMMSS_ffffff>.jpg for the capture instant t.
// Names sort lexically in capture order.
func FrameName(t time.Time) string {
	return fmt.Sprintf("%s%s_%06d%s", FramePrefix, t.Format("20060102_150405"), t.Nanosecond()/1000, FrameExt)
}
