package media

import (
	"time"
)

// Segment is one planned chunk of the source audio.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

// PlanSegments chooses chunk boundaries for an oversized audio file.
//
// The target duration per chunk is totalDuration*(maxBytes/fileSize)*0.95;
// the margin absorbs variable bitrate. Walking from offset 0, each cut is
// the latest silence midpoint within the window; when no midpoint lands in
// the window the cut is forced at exactly offset+target. Returned segments
// are contiguous, non-overlapping, ordered, and cover [0, totalDuration].
func PlanSegments(totalDuration time.Duration, fileSize, maxBytes int64, silenceMidpoints []time.Duration) []Segment {
	if totalDuration <= 0 || fileSize <= 0 || maxBytes <= 0 {
		return nil
	}
	if fileSize <= maxBytes {
		return []Segment{{Start: 0, End: totalDuration}}
	}

	ratio := float64(maxBytes) / float64(fileSize)
	target := time.Duration(float64(totalDuration) * ratio * 0.95)
	if target <= 0 {
		target = time.Second
	}

	var segments []Segment
	offset := time.Duration(0)
	next := 0
	for offset < totalDuration {
		windowEnd := offset + target
		if windowEnd >= totalDuration {
			segments = append(segments, Segment{Start: offset, End: totalDuration})
			break
		}

		cut := time.Duration(0)
		for next < len(silenceMidpoints) && silenceMidpoints[next] <= windowEnd {
			if silenceMidpoints[next] > offset {
				cut = silenceMidpoints[next]
			}
			next++
		}
		if cut == 0 {
			// Forced cut, no usable silence in the window.
			cut = windowEnd
		}
		segments = append(segments, Segment{Start: offset, End: cut})
		offset = cut
	}
	return segments
}
