package risk

import (
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
)

// Facts are corpus-wide version and deprecation facts. They are computed
// once from the metadata source and never change for an engine's lifetime.
type Facts struct {
	// LatestVersions maps doc_type to the highest numeric version seen for it,
	// as originally written.
	LatestVersions map[string]string `json:"latest_versions"`
	// Latest is the newest numeric version across the whole corpus, or "".
	Latest string `json:"latest"`
	// DeprecationNoticeExists is true if any file name announces a deprecation.
	DeprecationNoticeExists bool `json:"deprecation_notice_exists"`
}

// Only plain dotted numbers are versions; semver alone would also accept
// pre-release and build suffixes such as "2.0-beta" or "2.0.0+build".
var numericVersion = regexp.MustCompile(`^\d+(?:\.\d+)*$`)

// parseVersion returns the numeric version of s, or nil for non-numeric
// strings such as "unknown", "beta" or "2.0-rc1".
func parseVersion(s string) *semver.Version {
	if !numericVersion.MatchString(s) {
		return nil
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil
	}
	return v
}

// ComputeFacts derives Facts from every metadata record of the corpus.
// Records with non-numeric versions still count towards the deprecation
// notice fact but never towards version facts.
func ComputeFacts(records []domain.Metadata, notices metadata.NoticeMatcher) Facts {
	f := Facts{LatestVersions: make(map[string]string)}
	latestByType := make(map[string]*semver.Version)
	var latest *semver.Version
	for _, r := range records {
		if notices.IsNotice(r.FileName) {
			f.DeprecationNoticeExists = true
		}
		v := parseVersion(r.Version)
		if v == nil {
			continue
		}
		if cur, ok := latestByType[r.DocType]; !ok || v.GreaterThan(cur) {
			latestByType[r.DocType] = v
			f.LatestVersions[r.DocType] = r.Version
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
			f.Latest = r.Version
		}
	}
	return f
}
