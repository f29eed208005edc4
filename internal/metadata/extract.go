// Package metadata tags raw corpus files with version, type and deprecation
// metadata, and reads or writes the JSON metadata export.
package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
)

// UnknownVersion is recorded when no version can be found.
const UnknownVersion = "unknown"

// GeneralDocType is recorded when no doc type keyword matches.
const GeneralDocType = "general"

// Either "v2" / "v2.1" or a bare dotted number such as "3.0".
var versionPattern = regexp.MustCompile(`(?i)v(\d+(?:\.\d+)*)|(\d+(?:\.\d+)+)`)

var deprecationMarkers = []string{"deprecated", "no longer supported", "end of life"}

type typeRule struct {
	docType  string
	keywords []string
}

// Order matters: the first matching rule wins.
var typeRules = []typeRule{
	{"payment_api", []string{"payment"}},
	{"auth_api", []string{"oauth", "auth", "login"}},
	{"webhook", []string{"webhook"}},
	{"sdk", []string{"sdk", "client library"}},
	{"migration_guide", []string{"migration", "upgrade"}},
	{"config", []string{"config", "settings"}},
}

// Extract derives metadata for the file at path with contents text.
func Extract(path, text string, now time.Time) domain.Metadata {
	name := filepath.Base(path)
	lowerName := strings.ToLower(name)
	lowerText := strings.ToLower(text)
	return domain.Metadata{
		FileName:   name,
		Path:       path,
		Version:    extractVersion(name, text),
		Deprecated: strings.Contains(lowerName, "deprecat") || containsAny(lowerText, deprecationMarkers),
		DocType:    classify(lowerName, lowerText),
		IngestedAt: now.UTC(),
	}
}

func extractVersion(name, text string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, s := range []string{stem, text} {
		if m := versionPattern.FindStringSubmatch(s); m != nil {
			if m[1] != "" {
				return m[1]
			}
			return m[2]
		}
	}
	return UnknownVersion
}

func classify(lowerName, lowerText string) string {
	for _, r := range typeRules {
		if containsAny(lowerName, r.keywords) {
			return r.docType
		}
	}
	for _, r := range typeRules {
		if containsAny(lowerText, r.keywords) {
			return r.docType
		}
	}
	return GeneralDocType
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// NoticeMatcher decides whether a file name announces a deprecation.
type NoticeMatcher struct {
	markers []string
}

// DefaultNoticeMarkers are the file name fragments that signal a
// deprecation announcement. "deprecated" is not one of them: it marks a
// deprecated document, not an announcement. Other markers such as "sunset"
// are opt-in through risk.notice_markers.
var DefaultNoticeMarkers = []string{"deprecation"}

// NewNoticeMatcher builds a matcher; an empty marker list uses the defaults.
func NewNoticeMatcher(markers []string) NoticeMatcher {
	if len(markers) == 0 {
		markers = DefaultNoticeMarkers
	}
	lower := make([]string, len(markers))
	for i, m := range markers {
		lower[i] = strings.ToLower(m)
	}
	return NoticeMatcher{markers: lower}
}

// IsNotice reports whether fileName signals a deprecation announcement.
func (m NoticeMatcher) IsNotice(fileName string) bool {
	return containsAny(strings.ToLower(fileName), m.markers)
}
