package story

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/parser"
	"vehicle-story-pipeline/vehicle"
)

// Uploader persists a generated asset and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

const lazyPositionTolerance = 3.0

// lazyPositions are coordinate replies a vision model falls back to when it
// cannot actually locate the part. Hotspots resolved there are dropped.
var lazyPositions = [][2]float64{{50, 50}, {0, 0}, {100, 100}}

// partHints steers the vision model toward where a car part usually sits in
// a standard exterior shot. Matched by substring against the hotspot label.
var partHints = map[string]string{
	"headlight": "front of the car, near the grille",
	"grille":    "front center of the car",
	"wheel":     "lower half of the car",
	"rim":       "lower half of the car",
	"mirror":    "beside the front side window",
	"roof":      "top edge of the car body",
	"trunk":     "rear of the car",
	"spoiler":   "rear upper edge",
	"exhaust":   "lower rear of the car",
	"door":      "side of the car",
	"badge":     "front or rear center of the car",
	"camera":    "near the rear license plate or mirrors",
	"sensor":    "front or rear bumper",
}

// VisualSynthesizer renders a scene image and anchors its hotspots.
type VisualSynthesizer struct {
	images      llm.ImageGenerator
	vision      llm.Vision
	uploader    Uploader
	concurrency int
}

// NewVisualSynthesizer creates a synthesizer. vision may be nil; hotspots are
// then dropped rather than anchored.
func NewVisualSynthesizer(images llm.ImageGenerator, vision llm.Vision, uploader Uploader, concurrency int) *VisualSynthesizer {
	return &VisualSynthesizer{images: images, vision: vision, uploader: uploader, concurrency: concurrency}
}

// Run generates imagery for all scenes concurrently. A scene whose image
// fails keeps an empty ImageURL for the assembler to default; visual work
// never fails the run.
func (v *VisualSynthesizer) Run(ctx context.Context, storyID string, board *models.Storyboard, vctx *vehicle.Context) {
	if v.images == nil || v.uploader == nil {
		log.Warn("image generation not configured, scenes ship with placeholder imagery")
		return
	}
	var sem chan struct{}
	if v.concurrency > 0 {
		sem = make(chan struct{}, v.concurrency)
	}

	var wg sync.WaitGroup
	for i := range board.Scenes {
		// Technical scenes render through the interactive 3D view and
		// carry no generated image.
		if board.Scenes[i].Type == models.SceneTypeTech {
			continue
		}
		wg.Add(1)
		go func(scene *models.Scene) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := v.renderScene(ctx, storyID, scene, vctx); err != nil {
				log.WithError(err).WithField("scene_id", scene.ID).Warn("scene visual failed")
			}
		}(&board.Scenes[i])
	}
	wg.Wait()
}

func (v *VisualSynthesizer) renderScene(ctx context.Context, storyID string, scene *models.Scene, vctx *vehicle.Context) error {
	prompt := ImagePrompt(scene, vctx)
	seed := imageSeed(storyID, scene.ID)

	data, err := v.images.Generate(ctx, prompt, seed)
	if err != nil {
		return fmt.Errorf("image generation: %w", err)
	}

	key := fmt.Sprintf("stories/%s/scenes/%s.png", storyID, scene.ID)
	url, err := v.uploader.Upload(ctx, key, "image/png", data)
	if err != nil {
		return fmt.Errorf("image upload: %w", err)
	}
	scene.ImageURL = url

	if len(scene.Hotspots) > 0 {
		scene.Hotspots = v.anchorHotspots(ctx, url, scene.Hotspots)
	}
	return nil
}

// ImagePrompt builds the deterministic render prompt for a scene. The same
// scene always produces the same prompt so regenerated runs stay visually
// stable.
func ImagePrompt(scene *models.Scene, vctx *vehicle.Context) string {
	id := vctx.Identity
	subject := fmt.Sprintf("%d %s %s", id.Year, id.Make, id.Model)
	if id.Trim != "" {
		subject += " " + id.Trim
	}
	if id.Color != "" {
		subject = id.Color + " " + subject
	}
	if id.BodyType != "" {
		subject += " " + id.BodyType
	}
	return fmt.Sprintf("%s. Setting: %s. Camera: %s. Focus: %s. Lighting: %s. Photorealistic automotive photography, high detail, no text or watermarks.",
		subject, scene.Visual.Setting, scene.Visual.CameraAngle, scene.Visual.Focus, scene.Visual.Lighting)
}

func imageSeed(storyID, sceneID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(storyID))
	h.Write([]byte{'/'})
	h.Write([]byte(sceneID))
	return int64(h.Sum64() & math.MaxInt64)
}

// anchorHotspots asks the vision model to place every placeholder hotspot on
// the rendered image. Hotspots it cannot place, places out of range, or
// places at a lazy fallback position are dropped.
func (v *VisualSynthesizer) anchorHotspots(ctx context.Context, imageURL string, spots []models.Hotspot) []models.Hotspot {
	if v.vision == nil {
		return nil
	}

	raw, err := v.vision.LocateOnImage(ctx, imageURL, hotspotPrompt(spots))
	if err != nil {
		log.WithError(err).Warn("hotspot location failed, dropping hotspots")
		return nil
	}
	coords, err := parser.ParseCoordinates(raw)
	if err != nil {
		log.WithError(err).Warn("hotspot coordinates unparseable, dropping hotspots")
		return nil
	}

	var anchored []models.Hotspot
	for _, spot := range spots {
		xy, ok := coords[spot.ID]
		if !ok {
			continue
		}
		x, y := xy[0], xy[1]
		if x < 0 || x > 100 || y < 0 || y > 100 {
			continue
		}
		if isLazyPosition(x, y) {
			log.WithField("hotspot", spot.ID).Debug("vision returned a fallback position, dropping")
			continue
		}
		spot.X, spot.Y = x, y
		anchored = append(anchored, spot)
	}
	return anchored
}

func hotspotPrompt(spots []models.Hotspot) string {
	var b strings.Builder
	b.WriteString("Locate each listed car part on this image. Reply with a JSON object keyed by part id, each value {\"x\": .., \"y\": ..} with coordinates as percentages 0-100 of image width and height. Omit parts you cannot see.\n")
	for _, spot := range spots {
		fmt.Fprintf(&b, "- %s: %s", spot.ID, spot.Label)
		if hint := partHint(spot.Label); hint != "" {
			fmt.Fprintf(&b, " (usually at the %s)", hint)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func partHint(label string) string {
	lower := strings.ToLower(label)
	for part, hint := range partHints {
		if strings.Contains(lower, part) {
			return hint
		}
	}
	return ""
}

func isLazyPosition(x, y float64) bool {
	for _, p := range lazyPositions {
		if math.Abs(x-p[0]) <= lazyPositionTolerance && math.Abs(y-p[1]) <= lazyPositionTolerance {
			return true
		}
	}
	return false
}
