package model

// InsightKind is the category of an insight.
type InsightKind string

const (
	InsightPattern  InsightKind = "pattern"
	InsightAlert    InsightKind = "alert"
	InsightWarning  InsightKind = "warning"
	InsightPositive InsightKind = "positive"
	InsightInfo     InsightKind = "info"
)

// Impact is how much an insight matters to the user.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactPositive Impact = "positive"
)

// Insight is a single human-readable observation.
type Insight struct {
	Kind        InsightKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      Impact      `json:"impact"`
	Tag         string      `json:"tag"`
}
