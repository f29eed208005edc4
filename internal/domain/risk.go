package domain

import "time"

// RiskLevel is the coarse severity derived from a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Rule identifiers emitted in RiskVerdict.Flags.
const (
	FlagDeprecatedDoc       = "DEPRECATED_DOC"
	FlagOutdatedVersion     = "OUTDATED_VERSION"
	FlagIgnoringDeprecation = "IGNORING_DEPRECATION"
	FlagCriticalDomain      = "CRITICAL_DOMAIN"
	FlagVersionImbalance    = "VERSION_IMBALANCE"
)

// Recommended actions emitted in RiskVerdict.Actions.
const (
	ActionPrioritizeLatest   = "prioritize latest version"
	ActionArchiveOld         = "archive old versions"
	ActionEnforcePolicy      = "enforce deprecation policy"
	ActionUrgentReview       = "flag for urgent review"
	ActionContinueMonitoring = "continue monitoring"
)

// RiskVerdict is the explainable drift-risk assessment of one result set.
// Flags is deduplicated in first-fired order; FlagCounts records how many
// times each rule fired.
type RiskVerdict struct {
	Score      int            `json:"score"`
	Level      RiskLevel      `json:"level"`
	Reasons    []string       `json:"reasons"`
	Flags      []string       `json:"flags"`
	FlagCounts map[string]int `json:"flag_counts,omitempty"`
	Actions    []string       `json:"actions"`
}

// HasFlag reports whether the named rule fired.
func (v RiskVerdict) HasFlag(flag string) bool {
	for _, f := range v.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Analysis is the structured output of one query through the pipeline.
type Analysis struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	CreatedAt time.Time      `json:"created_at"`
	Results   []SearchResult `json:"results"`
	Verdict   RiskVerdict    `json:"risk"`
}
