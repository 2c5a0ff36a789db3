package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-story-pipeline/database"
	"vehicle-story-pipeline/models"
	"vehicle-story-pipeline/story"
)

const maxRequestedScenes = 10

// Handlers represents the HTTP handlers
type Handlers struct {
	db       *database.Database
	pipeline *story.Pipeline
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *database.Database, pipeline *story.Pipeline) *Handlers {
	return &Handlers{db: db, pipeline: pipeline}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "vehicle-story-pipeline",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vehicle-story-pipeline",
	})
}

// TriggerStoryRequest is the body of a story generation request.
type TriggerStoryRequest struct {
	VehicleID  string                  `json:"vehicle_id" binding:"required"`
	Overrides  models.VehicleOverrides `json:"overrides"`
	Style      string                  `json:"style"`
	SceneCount int                     `json:"scene_count"`
}

// TriggerStory starts one story generation run and returns immediately.
func (h *Handlers) TriggerStory(c *gin.Context) {
	var req TriggerStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.SceneCount < 0 || req.SceneCount > maxRequestedScenes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scene_count out of range"})
		return
	}

	if _, err := h.db.GetVehicle(c.Request.Context(), req.VehicleID); err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicle"})
		return
	}

	run := &models.StoryRun{
		ID:        uuid.NewString(),
		StoryID:   uuid.NewString(),
		VehicleID: req.VehicleID,
		Status:    models.RunStatusProcessing,
		Stage:     story.StageQueued,
	}
	if err := h.db.CreateRun(c.Request.Context(), run); err != nil {
		log.WithError(err).Error("failed to create run record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create run"})
		return
	}

	// The run outlives the HTTP request.
	go h.pipeline.Process(context.Background(), story.Request{
		RunID:      run.ID,
		StoryID:    run.StoryID,
		VehicleID:  req.VehicleID,
		Overrides:  req.Overrides,
		Style:      req.Style,
		SceneCount: req.SceneCount,
	})

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":   run.ID,
		"story_id": run.StoryID,
	})
}

// GetRun returns the observable status of one run.
func (h *Handlers) GetRun(c *gin.Context) {
	run, err := h.db.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetStory returns one finished story artifact.
func (h *Handlers) GetStory(c *gin.Context) {
	artifact, err := h.db.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load story"})
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// CreateVehicle ingests a vehicle record.
func (h *Handlers) CreateVehicle(c *gin.Context) {
	var v models.Vehicle
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if v.Make == "" || v.Model == "" || v.Year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "make, model and year are required"})
		return
	}

	if err := h.db.CreateVehicle(c.Request.Context(), &v); err != nil {
		log.WithError(err).Error("failed to create vehicle")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": v.ID})
}

// GetStats returns run statistics
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.db.GetRunStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":    stats,
		"service": "vehicle-story-pipeline",
	})
}
