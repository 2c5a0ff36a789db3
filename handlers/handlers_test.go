package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-story-pipeline/badges"
	"vehicle-story-pipeline/database"
	"vehicle-story-pipeline/story"
)

func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := database.NewFromDB(db)
	pipeline := story.NewPipeline(wrapped, nil,
		badges.NewResolver(nil, nil, nil, nil),
		nil, nil, nil, nil, nil, nil, 0)
	return NewHandlers(wrapped, pipeline), mock
}

func performJSON(h gin.HandlerFunc, method, path string, body any, params ...gin.Param) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	h(c)
	return w
}

func TestTriggerStoryMissingVehicleID(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := performJSON(h.TriggerStory, "POST", "/api/v3/stories", map[string]any{"style": "cinematic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerStorySceneCountOutOfRange(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := performJSON(h.TriggerStory, "POST", "/api/v3/stories",
		map[string]any{"vehicle_id": "veh-1", "scene_count": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerStoryUnknownVehicle(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM vehicles WHERE id = ?")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	w := performJSON(h.TriggerStory, "POST", "/api/v3/stories",
		map[string]any{"vehicle_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriggerStoryAccepted(t *testing.T) {
	h, mock := newTestHandlers(t)

	rows := sqlmock.NewRows([]string{
		"id", "make", "model", "year", "trim", "series", "vin", "body_type",
		"fuel_type", "drivetrain", "color", "mileage_km", "price", "raw_specs", "created_at",
	}).AddRow("veh-1", "Skoda", "Octavia", 2022, "RS", "", "", "Combi",
		"Petrol", "FWD", "Race Blue", "34500", "28900", "{}", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM vehicles WHERE id = ?")).
		WithArgs("veh-1").
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO story_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := performJSON(h.TriggerStory, "POST", "/api/v3/stories",
		map[string]any{"vehicle_id": "veh-1"})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["run_id"])
	assert.NotEmpty(t, resp["story_id"])
}

func TestGetRunNotFound(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM story_runs WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	w := performJSON(h.GetRun, "GET", "/api/v3/runs/missing", nil,
		gin.Param{Key: "id", Value: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRunOK(t *testing.T) {
	h, mock := newTestHandlers(t)
	rows := sqlmock.NewRows([]string{
		"id", "story_id", "vehicle_id", "status", "stage", "log_messages", "error", "created_at", "updated_at",
	}).AddRow("run-1", "story-1", "veh-1", "processing", "Scripting", "[]", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM story_runs WHERE id = ?")).
		WithArgs("run-1").
		WillReturnRows(rows)

	w := performJSON(h.GetRun, "GET", "/api/v3/runs/run-1", nil,
		gin.Param{Key: "id", Value: "run-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stage":"Scripting"`)
}

func TestGetStoryNotFound(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT artifact FROM stories WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	w := performJSON(h.GetStory, "GET", "/api/v3/stories/missing", nil,
		gin.Param{Key: "id", Value: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateVehicleValidation(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := performJSON(h.CreateVehicle, "POST", "/api/v3/vehicles",
		map[string]any{"make": "Skoda"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateVehicleOK(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO vehicles")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := performJSON(h.CreateVehicle, "POST", "/api/v3/vehicles",
		map[string]any{"make": "Skoda", "model": "Octavia", "year": 2022})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id"`)
}
