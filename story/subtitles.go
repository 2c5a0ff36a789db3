package story

import (
	"strings"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
)

// Subtitle segmentation thresholds.
const (
	silenceGapSec      = 0.3
	maxSegmentChars    = 42
	maxSegmentDurSec   = 3.5
	commaBreakMinChars = 15
)

// SegmentSubtitles turns word-level timestamps into caption segments in a
// single greedy forward pass. A split happens before a word when the silence
// gap, character cap, duration cap, terminal punctuation or comma rule
// triggers. The output has strictly non-decreasing, non-overlapping ranges.
func SegmentSubtitles(words []llm.Word) []models.SubtitleSegment {
	var segments []models.SubtitleSegment

	var text string
	var start, end float64
	open := false

	flush := func() {
		if !open {
			return
		}
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			segments = append(segments, models.SubtitleSegment{Text: trimmed, Start: start, End: end})
		}
		open = false
	}

	for _, w := range words {
		word := strings.TrimSpace(w.Text)
		if word == "" {
			continue
		}

		if open && shouldSplitBefore(text, start, end, w) {
			flush()
		}

		if !open {
			text = word
			start = w.Start
			end = w.End
			open = true
			continue
		}

		text += " " + word
		end = w.End
	}
	flush()

	return segments
}

// shouldSplitBefore decides whether the current segment closes before word w
// is added. text, segStart and prevEnd describe the open segment.
func shouldSplitBefore(text string, segStart, prevEnd float64, w llm.Word) bool {
	word := strings.TrimSpace(w.Text)

	// Silence gap between the previous word and this one.
	if w.Start-prevEnd > silenceGapSec {
		return true
	}
	// Previous word ended a sentence.
	if endsWithAny(text, ".", "?", "!") {
		return true
	}
	// Previous word ended a clause and the segment is already long.
	if strings.HasSuffix(text, ",") && len(text) > commaBreakMinChars {
		return true
	}
	// Appending would exceed the character cap.
	if len(text)+1+len(word) > maxSegmentChars {
		return true
	}
	// Including the word would exceed the duration cap.
	if w.End-segStart > maxSegmentDurSec {
		return true
	}
	return false
}

func endsWithAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
