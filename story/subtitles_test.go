package story

import (
	"strings"
	"testing"

	"vehicle-story-pipeline/llm"
)

func wordSeq(start float64, texts ...string) []llm.Word {
	words := make([]llm.Word, len(texts))
	t := start
	for i, text := range texts {
		words[i] = llm.Word{Text: text, Start: t, End: t + 0.25}
		t += 0.25
	}
	return words
}

func TestSegmentSubtitlesTerminalPunctuation(t *testing.T) {
	// Break must come right after "world." even though neither the character
	// cap nor the duration cap is reached; the 0.4s gap after it also holds.
	words := []llm.Word{
		{Text: "Hello", Start: 0.0, End: 0.3},
		{Text: "world.", Start: 0.3, End: 0.6},
		{Text: "This", Start: 1.0, End: 1.2},
		{Text: "is", Start: 1.2, End: 1.3},
		{Text: "great", Start: 1.3, End: 1.6},
	}

	segments := SegmentSubtitles(words)
	if len(segments) != 2 {
		t.Fatalf("SegmentSubtitles() = %d segments, want 2: %+v", len(segments), segments)
	}
	if segments[0].Text != "Hello world." {
		t.Errorf("first segment = %q, want %q", segments[0].Text, "Hello world.")
	}
	if segments[1].Text != "This is great" {
		t.Errorf("second segment = %q, want %q", segments[1].Text, "This is great")
	}
	if segments[0].End != 0.6 || segments[1].Start != 1.0 {
		t.Errorf("segment boundaries = [%v, %v], want [0.6, 1.0]", segments[0].End, segments[1].Start)
	}
}

func TestSegmentSubtitlesSilenceGap(t *testing.T) {
	words := []llm.Word{
		{Text: "smooth", Start: 0.0, End: 0.4},
		{Text: "ride", Start: 0.81, End: 1.1}, // 0.41s gap
	}

	segments := SegmentSubtitles(words)
	if len(segments) != 2 {
		t.Fatalf("SegmentSubtitles() = %d segments, want split on >0.3s gap", len(segments))
	}
}

func TestSegmentSubtitlesSmallGapNoSplit(t *testing.T) {
	words := []llm.Word{
		{Text: "smooth", Start: 0.0, End: 0.4},
		{Text: "ride", Start: 0.6, End: 0.9}, // 0.2s gap
	}

	segments := SegmentSubtitles(words)
	if len(segments) != 1 {
		t.Fatalf("SegmentSubtitles() = %d segments, want 1 for a 0.2s gap", len(segments))
	}
	if segments[0].Text != "smooth ride" {
		t.Errorf("segment = %q, want %q", segments[0].Text, "smooth ride")
	}
}

func TestSegmentSubtitlesCharacterCap(t *testing.T) {
	words := wordSeq(0, "the", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog", "tonight")

	segments := SegmentSubtitles(words)
	if len(segments) < 2 {
		t.Fatalf("SegmentSubtitles() = %d segments, want a split from the 42-char cap", len(segments))
	}
	for _, seg := range segments {
		if len(seg.Text) > maxSegmentChars {
			t.Errorf("segment %q is %d chars, cap is %d", seg.Text, len(seg.Text), maxSegmentChars)
		}
	}
}

func TestSegmentSubtitlesDurationCap(t *testing.T) {
	// Short words spoken slowly: character cap never triggers, duration does.
	words := []llm.Word{
		{Text: "so", Start: 0.0, End: 1.0},
		{Text: "very", Start: 1.1, End: 2.2},
		{Text: "slow", Start: 2.3, End: 3.4},
		{Text: "now", Start: 3.5, End: 4.6},
	}

	segments := SegmentSubtitles(words)
	if len(segments) < 2 {
		t.Fatalf("SegmentSubtitles() = %d segments, want a split from the 3.5s cap", len(segments))
	}
	for _, seg := range segments {
		if seg.End-seg.Start > maxSegmentDurSec {
			t.Errorf("segment %q spans %.2fs, cap is %.1fs", seg.Text, seg.End-seg.Start, maxSegmentDurSec)
		}
	}
}

func TestSegmentSubtitlesCommaRule(t *testing.T) {
	words := wordSeq(0, "a", "car,", "fast") // segment "a car," is 6 chars, under the 15-char floor
	if segments := SegmentSubtitles(words); len(segments) != 1 {
		t.Errorf("comma after a short segment must not split, got %d segments", len(segments))
	}

	words = wordSeq(0, "an", "exceptional", "vehicle,", "truly") // "an exceptional vehicle," is 23 chars
	segments := SegmentSubtitles(words)
	if len(segments) != 2 {
		t.Fatalf("comma after a long segment must split, got %d segments", len(segments))
	}
	if segments[0].Text != "an exceptional vehicle," {
		t.Errorf("first segment = %q", segments[0].Text)
	}
}

func TestSegmentSubtitlesMonotonicNonOverlapping(t *testing.T) {
	words := wordSeq(0, strings.Fields("this spacious family suv combines comfort safety and efficiency for every daily journey you take together")...)

	segments := SegmentSubtitles(words)
	if len(segments) == 0 {
		t.Fatal("SegmentSubtitles() returned no segments")
	}
	for i, seg := range segments {
		if seg.End < seg.Start {
			t.Errorf("segment %d has End < Start: %+v", i, seg)
		}
		if i > 0 && seg.Start < segments[i-1].End {
			t.Errorf("segment %d overlaps previous: %+v / %+v", i, segments[i-1], seg)
		}
	}
}

func TestSegmentSubtitlesEmptyAndBlankWords(t *testing.T) {
	if segments := SegmentSubtitles(nil); len(segments) != 0 {
		t.Errorf("SegmentSubtitles(nil) = %v, want empty", segments)
	}
	words := []llm.Word{
		{Text: "  ", Start: 0, End: 0.1},
		{Text: "hello", Start: 0.1, End: 0.4},
	}
	segments := SegmentSubtitles(words)
	if len(segments) != 1 || segments[0].Text != "hello" {
		t.Errorf("SegmentSubtitles() = %+v, want single 'hello' segment", segments)
	}
}
