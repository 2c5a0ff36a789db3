package story

import (
	"context"
	"fmt"
	"sync"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
)

// NarrationSynthesizer voices every scene and derives timed subtitles from
// the rendered audio.
type NarrationSynthesizer struct {
	speech      llm.Speech
	transcriber llm.Transcriber
	uploader    Uploader
	concurrency int
}

// NewNarrationSynthesizer creates a synthesizer.
func NewNarrationSynthesizer(speech llm.Speech, transcriber llm.Transcriber, uploader Uploader, concurrency int) *NarrationSynthesizer {
	return &NarrationSynthesizer{speech: speech, transcriber: transcriber, uploader: uploader, concurrency: concurrency}
}

// Run narrates all scenes concurrently. A scene whose narration fails at any
// step ships silent, with no audio URL and no subtitles.
func (n *NarrationSynthesizer) Run(ctx context.Context, storyID string, board *models.Storyboard) {
	if n.speech == nil || n.transcriber == nil || n.uploader == nil {
		log.Warn("narration not configured, scenes ship silent")
		return
	}
	var sem chan struct{}
	if n.concurrency > 0 {
		sem = make(chan struct{}, n.concurrency)
	}

	var wg sync.WaitGroup
	for i := range board.Scenes {
		wg.Add(1)
		go func(scene *models.Scene) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := n.narrateScene(ctx, storyID, scene); err != nil {
				log.WithError(err).WithField("scene_id", scene.ID).Warn("scene narration failed, shipping silent")
				scene.AudioURL = ""
				scene.Subtitles = nil
			}
		}(&board.Scenes[i])
	}
	wg.Wait()
}

func (n *NarrationSynthesizer) narrateScene(ctx context.Context, storyID string, scene *models.Scene) error {
	if scene.Voiceover == "" {
		return nil
	}

	audio, err := n.speech.Synthesize(ctx, scene.Voiceover)
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}

	key := fmt.Sprintf("stories/%s/audio/%s.mp3", storyID, scene.ID)
	url, err := n.uploader.Upload(ctx, key, "audio/mpeg", audio)
	if err != nil {
		return fmt.Errorf("audio upload: %w", err)
	}

	words, err := n.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return fmt.Errorf("transcription: %w", err)
	}

	scene.AudioURL = url
	scene.Subtitles = SegmentSubtitles(words)
	return nil
}
