package story

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"vehicle-story-pipeline/badges"
	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/metrics"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/vehicle"
)

// Pipeline stage names, in execution order.
const (
	StageQueued      = "Queued"
	StageIngesting   = "Ingesting"
	StageClassifying = "Classifying"
	StageScripting   = "Scripting"
	StageVisualizing = "Visualizing"
	StageNarrating   = "Narrating"
	StageAssembling  = "Assembling"
	StageComplete    = "Complete"
	StageFailed      = "Failed"
)

// Request is one story generation job.
type Request struct {
	RunID      string
	StoryID    string
	VehicleID  string
	Overrides  models.VehicleOverrides
	Style      string
	SceneCount int
}

// RunStore persists run progress and the finished story.
type RunStore interface {
	GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error)
	SetRunStage(ctx context.Context, runID, stage, logMessage string) error
	MarkRunComplete(ctx context.Context, runID string) error
	MarkRunFailed(ctx context.Context, runID, reason string) error
	SaveStory(ctx context.Context, storyID, vehicleID string, artifact *models.StoryArtifact) error
}

// EventPublisher announces terminal run statuses to interested consumers.
type EventPublisher interface {
	StoryCompleted(ctx context.Context, runID, storyID, vehicleID string) error
	StoryFailed(ctx context.Context, runID, storyID, vehicleID, reason string) error
}

// Pipeline runs the story stages in strict order. Synthesis stages degrade
// per scene; only ingestion, planning and persistence abort a run.
type Pipeline struct {
	store     RunStore
	publisher EventPublisher
	resolver  *badges.Resolver

	model       llm.Client
	images      llm.ImageGenerator
	vision      llm.Vision
	speech      llm.Speech
	transcriber llm.Transcriber
	uploader    Uploader

	sceneConcurrency int
}

// NewPipeline wires a pipeline. publisher may be nil when eventing is
// disabled.
func NewPipeline(store RunStore, publisher EventPublisher, resolver *badges.Resolver,
	model llm.Client, images llm.ImageGenerator, vision llm.Vision,
	speech llm.Speech, transcriber llm.Transcriber, uploader Uploader,
	sceneConcurrency int) *Pipeline {
	return &Pipeline{
		store:            store,
		publisher:        publisher,
		resolver:         resolver,
		model:            model,
		images:           images,
		vision:           vision,
		speech:           speech,
		transcriber:      transcriber,
		uploader:         uploader,
		sceneConcurrency: sceneConcurrency,
	}
}

// Process executes one run start to finish. It never returns an error to the
// caller; failures are recorded on the run itself.
func (p *Pipeline) Process(ctx context.Context, req Request) {
	logger := log.WithField("run_id", req.RunID).WithField("vehicle_id", req.VehicleID)
	started := time.Now()

	metrics.RunsInFlight.Inc()
	defer metrics.RunsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("pipeline panic: %v", r)
			p.fail(ctx, req, fmt.Sprintf("internal error: %v", r))
		}
	}()

	vctx, err := p.ingest(ctx, req)
	if err != nil {
		logger.WithError(err).Error("ingestion failed")
		p.fail(ctx, req, err.Error())
		return
	}

	board, err := p.classify(ctx, req, vctx)
	if err != nil {
		logger.WithError(err).Error("storyboard planning failed")
		p.fail(ctx, req, err.Error())
		return
	}

	p.advance(ctx, req.RunID, StageScripting, fmt.Sprintf("scripting %d scenes", len(board.Scenes)))
	p.timed(StageScripting, func() {
		NewScriptSynthesizer(p.model, p.sceneConcurrency).Run(ctx, board, vctx)
	})

	p.advance(ctx, req.RunID, StageVisualizing, "rendering scene imagery")
	p.timed(StageVisualizing, func() {
		NewVisualSynthesizer(p.images, p.vision, p.uploader, p.sceneConcurrency).Run(ctx, req.StoryID, board, vctx)
	})

	p.advance(ctx, req.RunID, StageNarrating, "voicing scenes")
	p.timed(StageNarrating, func() {
		NewNarrationSynthesizer(p.speech, p.transcriber, p.uploader, p.sceneConcurrency).Run(ctx, req.StoryID, board)
	})

	p.advance(ctx, req.RunID, StageAssembling, "assembling final story")
	artifact := Assemble(board, vctx)
	if err := p.store.SaveStory(ctx, req.StoryID, req.VehicleID, artifact); err != nil {
		logger.WithError(err).Error("story persistence failed")
		p.fail(ctx, req, fmt.Sprintf("saving story: %v", err))
		return
	}

	if err := p.store.MarkRunComplete(ctx, req.RunID); err != nil {
		logger.WithError(err).Error("failed to mark run complete")
	}
	metrics.RecordRunOutcome("complete")
	metrics.RecordRunDuration(time.Since(started))

	if p.publisher != nil {
		if err := p.publisher.StoryCompleted(ctx, req.RunID, req.StoryID, req.VehicleID); err != nil {
			logger.WithError(err).Warn("story completed event not published")
		}
	}
	logger.WithField("scenes", len(artifact.Scenes)).Info("story run complete")
}

func (p *Pipeline) ingest(ctx context.Context, req Request) (*vehicle.Context, error) {
	p.advance(ctx, req.RunID, StageIngesting, "building vehicle context")
	var vctx *vehicle.Context
	var err error
	p.timed(StageIngesting, func() {
		var record *models.Vehicle
		record, err = p.store.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			err = fmt.Errorf("loading vehicle %s: %w", req.VehicleID, err)
			return
		}
		vctx, err = vehicle.Build(record, req.Overrides)
		if err != nil {
			return
		}
		vctx.Certifications = p.resolver.Resolve(ctx, vctx)
	})
	return vctx, err
}

func (p *Pipeline) classify(ctx context.Context, req Request, vctx *vehicle.Context) (*models.Storyboard, error) {
	p.advance(ctx, req.RunID, StageClassifying, "planning storyboard")
	var board *models.Storyboard
	var err error
	p.timed(StageClassifying, func() {
		board, err = PlanStoryboard(ctx, p.model, vctx, req.Style, req.SceneCount)
	})
	return board, err
}

// advance persists the new stage. A persistence failure is logged and the
// stage still runs; the run record lags but the work continues.
func (p *Pipeline) advance(ctx context.Context, runID, stage, message string) {
	if err := p.store.SetRunStage(ctx, runID, stage, message); err != nil {
		log.WithError(err).WithField("run_id", runID).Warnf("failed to persist stage %s", stage)
	}
}

func (p *Pipeline) fail(ctx context.Context, req Request, reason string) {
	if err := p.store.MarkRunFailed(ctx, req.RunID, reason); err != nil {
		log.WithError(err).WithField("run_id", req.RunID).Error("failed to mark run failed")
	}
	metrics.RecordRunOutcome("failed")

	if p.publisher != nil {
		if err := p.publisher.StoryFailed(ctx, req.RunID, req.StoryID, req.VehicleID, reason); err != nil {
			log.WithError(err).WithField("run_id", req.RunID).Warn("story failed event not published")
		}
	}
}

func (p *Pipeline) timed(stage string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordStageDuration(stage, time.Since(start))
}
