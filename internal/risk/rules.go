package risk

import (
	"fmt"
	"strings"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
)

const (
	deprecatedPenalty  = 50
	outdatedPenalty    = 25
	ignoringPenalty    = 15
	imbalancePenalty   = 10
	criticalMultiplier = 13 // tenths, applied with integer truncation
	maxScore           = 100
)

// accumulator carries the running verdict through the rule steps.
type accumulator struct {
	score   int
	reasons []string
	flags   []string
	counts  map[string]int
}

func newAccumulator() accumulator {
	return accumulator{counts: make(map[string]int)}
}

func (a accumulator) fire(flag, reason string) accumulator {
	if a.counts[flag] == 0 {
		a.flags = append(a.flags, flag)
	}
	a.counts[flag]++
	a.reasons = append(a.reasons, reason)
	return a
}

func (a accumulator) add(points int) accumulator {
	a.score += points
	return a
}

// step is one scoring rule.
type step func(acc accumulator, results []domain.SearchResult, c corpus) accumulator

// The order is load-bearing: the critical-domain multiplier scales what the
// first three rules accumulated and nothing after it.
var rules = []step{
	deprecatedDocRule,
	outdatedVersionRule,
	ignoringDeprecationRule,
	criticalDomainRule,
	versionImbalanceRule,
}

func deprecatedDocRule(acc accumulator, results []domain.SearchResult, _ corpus) accumulator {
	found := false
	for _, r := range results {
		m := r.Document.Metadata
		if !m.Deprecated {
			continue
		}
		found = true
		acc = acc.fire(domain.FlagDeprecatedDoc,
			fmt.Sprintf("Retrieved deprecated document %s (version %s).", m.FileName, m.Version))
	}
	if found {
		acc = acc.add(deprecatedPenalty)
	}
	return acc
}

func outdatedVersionRule(acc accumulator, results []domain.SearchResult, c corpus) accumulator {
	for _, r := range results {
		m := r.Document.Metadata
		if m.Deprecated {
			continue
		}
		v := parseVersion(m.Version)
		latest := c.latestByType[m.DocType]
		if v == nil || latest == nil || !v.LessThan(latest) {
			continue
		}
		acc = acc.add(outdatedPenalty).fire(domain.FlagOutdatedVersion,
			fmt.Sprintf("Document %s is version %s but the latest %s is %s.",
				m.FileName, m.Version, m.DocType, c.facts.LatestVersions[m.DocType]))
	}
	return acc
}

func ignoringDeprecationRule(acc accumulator, results []domain.SearchResult, c corpus) accumulator {
	if !c.facts.DeprecationNoticeExists {
		return acc
	}
	for _, r := range results {
		v := r.Document.Metadata.Version
		if strings.HasPrefix(v, "1.") || strings.HasPrefix(v, "2.") {
			return acc.add(ignoringPenalty).fire(domain.FlagIgnoringDeprecation,
				"A deprecation notice exists but results still rely on 1.x/2.x versions.")
		}
	}
	return acc
}

func criticalDomainRule(acc accumulator, results []domain.SearchResult, c corpus) accumulator {
	for _, r := range results {
		t := r.Document.Metadata.DocType
		if _, ok := c.critical[t]; ok {
			acc.score = acc.score * criticalMultiplier / 10
			return acc.fire(domain.FlagCriticalDomain,
				fmt.Sprintf("Results include critical domain %s; risk amplified.", t))
		}
	}
	return acc
}

func versionImbalanceRule(acc accumulator, results []domain.SearchResult, c corpus) accumulator {
	if c.latest == nil {
		return acc
	}
	// Every version except "unknown" counts as known, numeric or not, so a
	// mix such as {"1.0", "beta"} is not imbalanced.
	distinct := make(map[string]string)
	for _, r := range results {
		raw := r.Document.Metadata.Version
		if raw == "" || raw == metadata.UnknownVersion {
			continue
		}
		key := raw
		if v := parseVersion(raw); v != nil {
			key = v.String()
		}
		distinct[key] = raw
	}
	if len(distinct) != 1 {
		return acc
	}
	for _, raw := range distinct {
		v := parseVersion(raw)
		if v == nil || v.Equal(c.latest) {
			return acc
		}
		acc = acc.add(imbalancePenalty).fire(domain.FlagVersionImbalance,
			fmt.Sprintf("All results are version %s; none reflect the current version %s.", raw, c.facts.Latest))
	}
	return acc
}

// verdict clamps the score and derives level, fallback reason and actions.
func (a accumulator) verdict() domain.RiskVerdict {
	score := a.score
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}
	level := LevelFor(score)

	reasons := a.reasons
	if len(a.flags) == 0 {
		reasons = append(reasons, "No drift risk detected in retrieved documents.")
	}
	flags := a.flags
	if flags == nil {
		flags = []string{}
	}

	actions := []string{}
	if a.counts[domain.FlagDeprecatedDoc] > 0 || a.counts[domain.FlagOutdatedVersion] > 0 {
		actions = append(actions, domain.ActionPrioritizeLatest, domain.ActionArchiveOld)
	}
	if a.counts[domain.FlagIgnoringDeprecation] > 0 {
		actions = append(actions, domain.ActionEnforcePolicy)
	}
	if a.counts[domain.FlagCriticalDomain] > 0 {
		actions = append(actions, domain.ActionUrgentReview)
	}
	if level == domain.RiskLow && len(actions) == 0 {
		actions = append(actions, domain.ActionContinueMonitoring)
	}

	counts := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		counts[k] = v
	}
	return domain.RiskVerdict{
		Score:      score,
		Level:      level,
		Reasons:    reasons,
		Flags:      flags,
		FlagCounts: counts,
		Actions:    actions,
	}
}
