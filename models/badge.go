package models

// BadgeCategory groups badges for display ordering.
type BadgeCategory string

const (
	CategorySafety      BadgeCategory = "Safety"
	CategoryEco         BadgeCategory = "Eco"
	CategoryPerformance BadgeCategory = "Performance"
	CategoryTechnology  BadgeCategory = "Technology"
	CategoryReliability BadgeCategory = "Reliability"
	CategoryAward       BadgeCategory = "Award"
	CategoryRegulatory  BadgeCategory = "Regulatory"
)

// BadgeMethod records how a badge was obtained.
type BadgeMethod string

const (
	MethodRule     BadgeMethod = "rule"
	MethodProvider BadgeMethod = "provider"
	MethodSearch   BadgeMethod = "search"
)

// Badge is a verified award, rating or regulatory sticker attached to the
// vehicle. Group names a family of mutually exclusive badges (e.g. the tiers
// of one crash-rating scale); Rank picks the winner within a group. Badges
// are produced fresh on every run and persisted only as part of the story.
type Badge struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Category BadgeCategory `json:"category"`
	Group    string        `json:"group"`
	Rank     int           `json:"rank"`
	Method   BadgeMethod   `json:"method"`
	Evidence string        `json:"evidence,omitempty"`
}
