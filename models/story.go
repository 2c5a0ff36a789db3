package models

import "time"

// SceneType discriminates the content shape of a scene.
type SceneType string

const (
	SceneTypeIntro SceneType = "intro"
	SceneTypeSlide SceneType = "slide"
	SceneTypeTech  SceneType = "tech"
	SceneTypeOutro SceneType = "outro"
)

// ThemeTag is the closed theme set used to gate technical scenes.
type ThemeTag string

const (
	ThemePerformance ThemeTag = "PERFORMANCE"
	ThemeSafety      ThemeTag = "SAFETY"
	ThemeUtility     ThemeTag = "UTILITY"
	ThemeGeneral     ThemeTag = "GENERAL"
)

// VisualDirection tells the visual stage how to frame a scene.
type VisualDirection struct {
	Setting     string `json:"setting"`
	CameraAngle string `json:"camera_angle"`
	Focus       string `json:"focus"`
	Lighting    string `json:"lighting"`
}

// Hotspot is an interactive point on a scene image. Coordinates are
// normalized to [0,100] in both axes. A hotspot starts as a placeholder
// (label/icon/hover only) and is either resolved with coordinates by the
// visual stage or dropped.
type Hotspot struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Icon       string  `json:"icon"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	HoverTitle string  `json:"hover_title"`
	HoverBody  string  `json:"hover_body"`
}

// SubtitleSegment is one caption with start/end times in seconds.
type SubtitleSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// IntroContent is the content block of an intro scene.
type IntroContent struct {
	Headline string `json:"headline"`
	Tagline  string `json:"tagline"`
}

// SlideContent is the content block of a standard or technical slide.
type SlideContent struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	FeatureSlug string `json:"feature_slug"`
}

// OutroContent is the content block of an outro scene.
type OutroContent struct {
	Headline     string `json:"headline"`
	CallToAction string `json:"call_to_action"`
}

// PerformanceConfig backs the PERFORMANCE tech view.
type PerformanceConfig struct {
	EngineLabel    string  `json:"engine_label"`
	HorsepowerHP   float64 `json:"horsepower_hp"`
	TorqueNM       float64 `json:"torque_nm"`
	ZeroToSixtySec float64 `json:"zero_to_sixty_sec"`
	TopSpeedKPH    float64 `json:"top_speed_kph"`
}

// SafetyConfig backs the SAFETY tech view.
type SafetyConfig struct {
	AirbagCount     int      `json:"airbag_count"`
	CrashStars      int      `json:"crash_stars"`
	AssistFeatures  []string `json:"assist_features"`
	ReinforcedCabin bool     `json:"reinforced_cabin"`
}

// UtilityConfig backs the UTILITY tech view.
type UtilityConfig struct {
	SeatCount     int     `json:"seat_count"`
	TrunkLiters   float64 `json:"trunk_liters"`
	TrunkWidthCM  float64 `json:"trunk_width_cm"`
	TrunkDepthCM  float64 `json:"trunk_depth_cm"`
	TrunkHeightCM float64 `json:"trunk_height_cm"`
	FoldFlatSeats bool    `json:"fold_flat_seats"`
}

// TechConfig is the mode-specific configuration of a technical scene.
// Exactly one of the mode blocks is populated, matching Mode.
type TechConfig struct {
	Mode        ThemeTag           `json:"mode"`
	Performance *PerformanceConfig `json:"performance,omitempty"`
	Safety      *SafetyConfig      `json:"safety,omitempty"`
	Utility     *UtilityConfig     `json:"utility,omitempty"`
}

// Scene is one unit of the generated story. It starts as a director-emitted
// draft and is progressively enriched by the pipeline stages.
type Scene struct {
	ID          string          `json:"id"`
	Type        SceneType       `json:"type"`
	ThemeTag    ThemeTag        `json:"theme_tag"`
	FeatureSlug string          `json:"feature_slug,omitempty"`
	Visual      VisualDirection `json:"visual_direction"`
	Layout      string          `json:"layout,omitempty"`
	TechConfig  *TechConfig     `json:"tech_config,omitempty"`

	Intro *IntroContent `json:"intro,omitempty"`
	Slide *SlideContent `json:"slide,omitempty"`
	Outro *OutroContent `json:"outro,omitempty"`

	Badges    []Badge           `json:"badges"`
	Hotspots  []Hotspot         `json:"hotspots"`
	ImageURL  string            `json:"image_url"`
	AudioURL  string            `json:"audio_url"`
	Subtitles []SubtitleSegment `json:"subtitles"`
	Voiceover string            `json:"voiceover"`
}

// Storyboard is the ordered scene list produced by the narrative planner and
// enriched by every later stage.
type Storyboard struct {
	Title            string  `json:"title"`
	NarrativeSummary string  `json:"narrative_arc_summary"`
	Scenes           []Scene `json:"scenes"`
}

// StoryArtifact is the final persisted story shape. Every scene field is
// fully defaulted by the assembler before this is written.
type StoryArtifact struct {
	Title            string         `json:"title"`
	NarrativeSummary string         `json:"narrative_arc_summary"`
	Scenes           []Scene        `json:"scenes"`
	Badges           []Badge        `json:"badges"`
	Car              CarIdentity    `json:"car"`
	CarSpecs         map[string]any `json:"car_specs"`
}

// CarIdentity is the vehicle identity block embedded in the artifact.
type CarIdentity struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Trim     string `json:"trim,omitempty"`
	VIN      string `json:"vin,omitempty"`
	BodyType string `json:"body_type,omitempty"`
	Color    string `json:"color,omitempty"`
}

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// StoryRun is the observable status record of one pipeline execution. It is
// created at request time and mutated by the sequencer after every stage.
type StoryRun struct {
	ID          string    `json:"id"`
	StoryID     string    `json:"story_id"`
	VehicleID   string    `json:"vehicle_id"`
	Status      RunStatus `json:"status"`
	Stage       string    `json:"stage"`
	LogMessages []string  `json:"log_messages"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
