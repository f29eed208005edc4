package risk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
)

func meta(file, version, docType string, deprecated bool) domain.Metadata {
	return domain.Metadata{FileName: file, Version: version, DocType: docType, Deprecated: deprecated}
}

func results(metas ...domain.Metadata) []domain.SearchResult {
	out := make([]domain.SearchResult, len(metas))
	for i, m := range metas {
		out[i] = domain.SearchResult{Distance: float64(i), Document: domain.Document{ID: i, Metadata: m}}
	}
	return out
}

// referenceCorpus mirrors a typical archive: three payment versions, webhook
// docs up to 3.0, a config doc and a deprecation announcement.
func referenceCorpus() []domain.Metadata {
	return []domain.Metadata{
		meta("payment_v1.0.txt", "1.0", "payment_api", true),
		meta("payment_v2.0.txt", "2.0", "payment_api", false),
		meta("payment_v3.0.txt", "3.0", "payment_api", false),
		meta("webhook_v2.0.txt", "2.0", "webhook", false),
		meta("webhook_v3.0.txt", "3.0", "webhook", false),
		meta("config_v3.0.txt", "3.0", "config", false),
		meta("config_v2.5.txt", "2.5", "config", false),
		meta("deprecation_notice.txt", "unknown", "general", false),
	}
}

type staticSource struct {
	recs []domain.Metadata
	err  error
}

func (s staticSource) Records(context.Context) ([]domain.Metadata, error) { return s.recs, s.err }

func TestNewEngine_MetadataUnavailable(t *testing.T) {
	_, err := NewEngine(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrMetadataUnavailable)

	_, err = NewEngine(context.Background(), staticSource{err: errors.New("disk gone")})
	require.ErrorIs(t, err, domain.ErrMetadataUnavailable)

	e, err := NewEngine(context.Background(), staticSource{recs: referenceCorpus()})
	require.NoError(t, err)
	assert.Equal(t, "3.0", e.Facts().Latest)
}

func TestComputeFacts(t *testing.T) {
	e := NewEngineFromRecords(append(referenceCorpus(), meta("sdk_beta.txt", "beta", "sdk", false)))
	f := e.Facts()
	assert.Equal(t, map[string]string{"payment_api": "3.0", "webhook": "3.0", "config": "3.0"}, f.LatestVersions)
	assert.Equal(t, "3.0", f.Latest)
	assert.True(t, f.DeprecationNoticeExists)

	f.LatestVersions["payment_api"] = "9.9"
	assert.Equal(t, "3.0", e.Facts().LatestVersions["payment_api"])
}

func TestComputeFacts_NumericOrdering(t *testing.T) {
	e := NewEngineFromRecords([]domain.Metadata{
		meta("sdk_v1.9.txt", "1.9", "sdk", false),
		meta("sdk_v1.10.txt", "1.10", "sdk", false),
	})
	assert.Equal(t, "1.10", e.Facts().LatestVersions["sdk"])
	assert.False(t, e.Facts().DeprecationNoticeExists)
}

func TestCompute_Empty(t *testing.T) {
	v := NewEngineFromRecords(referenceCorpus()).Compute(nil)
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, domain.RiskLow, v.Level)
	assert.Len(t, v.Reasons, 1)
	assert.Empty(t, v.Flags)
	assert.Empty(t, v.Actions)
}

func TestCompute_DeprecatedPaymentScenario(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus())
	v := e.Compute(results(meta("payment_v1.0.txt", "1.0", "payment_api", true)))

	assert.True(t, v.HasFlag(domain.FlagDeprecatedDoc))
	assert.GreaterOrEqual(t, v.Score, 50)
	assert.Contains(t, []domain.RiskLevel{domain.RiskMedium, domain.RiskHigh}, v.Level)
	// (50 + 15) * 1.3 = 84, + 10 imbalance
	assert.Equal(t, 94, v.Score)
	assert.Equal(t, domain.RiskHigh, v.Level)
	assert.Equal(t, []string{
		domain.FlagDeprecatedDoc,
		domain.FlagIgnoringDeprecation,
		domain.FlagCriticalDomain,
		domain.FlagVersionImbalance,
	}, v.Flags)
	assert.Equal(t, []string{
		domain.ActionPrioritizeLatest,
		domain.ActionArchiveOld,
		domain.ActionEnforcePolicy,
		domain.ActionUrgentReview,
	}, v.Actions)
}

func TestCompute_CurrentVersionsAreLowRisk(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus())
	v := e.Compute(results(
		meta("config_v3.0.txt", "3.0", "config", false),
		meta("config_v3.0.txt", "3.0", "config", false),
	))
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, domain.RiskLow, v.Level)
	assert.Empty(t, v.Flags)
	assert.Equal(t, []string{"No drift risk detected in retrieved documents."}, v.Reasons)
	assert.Equal(t, []string{domain.ActionContinueMonitoring}, v.Actions)
}

func TestCompute_OutdatedWebhookScenario(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus())
	v := e.Compute(results(
		meta("webhook_v2.0.txt", "2.0", "webhook", false),
		meta("webhook_v2.0_retry.txt", "2.0", "webhook", false),
		meta("webhook_v2.0_sig.txt", "2.0", "webhook", false),
	))
	assert.Equal(t, 3, v.FlagCounts[domain.FlagOutdatedVersion])
	assert.True(t, v.HasFlag(domain.FlagCriticalDomain))
	assert.Equal(t, 100, v.Score)
	assert.Equal(t, domain.RiskHigh, v.Level)
}

func TestCompute_RuleOrderMultiplierPlacement(t *testing.T) {
	// Without a deprecation notice: 25 * 1.3 = 32 (truncated), then +10 = 42.
	recs := []domain.Metadata{
		meta("webhook_v2.0.txt", "2.0", "webhook", false),
		meta("webhook_v3.0.txt", "3.0", "webhook", false),
	}
	v := NewEngineFromRecords(recs).Compute(results(meta("webhook_v2.0.txt", "2.0", "webhook", false)))
	assert.Equal(t, 42, v.Score)
	assert.Equal(t, domain.RiskMedium, v.Level)
	assert.Equal(t, []string{domain.FlagOutdatedVersion, domain.FlagCriticalDomain, domain.FlagVersionImbalance}, v.Flags)
}

func TestCompute_NonNumericVersionsSkipped(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus())
	v := e.Compute(results(
		meta("payment_draft.txt", "draft", "payment_api", false),
		meta("config_unknown.txt", "unknown", "config", false),
	))
	assert.False(t, v.HasFlag(domain.FlagOutdatedVersion))
	assert.False(t, v.HasFlag(domain.FlagVersionImbalance))
	assert.True(t, v.HasFlag(domain.FlagCriticalDomain))
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, domain.RiskLow, v.Level)
	assert.Equal(t, []string{domain.ActionUrgentReview}, v.Actions)
}

func TestCompute_ImbalanceUsesCorpusLatest(t *testing.T) {
	// The newest version is 4.0, so results pinned to 3.0 are imbalanced.
	recs := []domain.Metadata{
		meta("config_v3.0.txt", "3.0", "config", false),
		meta("guide_v4.0.txt", "4.0", "migration_guide", false),
	}
	v := NewEngineFromRecords(recs).Compute(results(meta("config_v3.0.txt", "3.0", "config", false)))
	assert.Equal(t, []string{domain.FlagVersionImbalance}, v.Flags)
	assert.Equal(t, 10, v.Score)

	v = NewEngineFromRecords(recs).Compute(results(meta("guide_v4.0.txt", "4.0", "migration_guide", false)))
	assert.Empty(t, v.Flags)
}

func TestCompute_CustomCriticalTypes(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus(), WithCriticalTypes([]string{"config"}))
	v := e.Compute(results(meta("config_v2.5.txt", "2.5", "config", false)))
	// 25 outdated + 15 ignoring = 40, * 1.3 = 52, + 10 = 62
	assert.Equal(t, 62, v.Score)
	assert.True(t, v.HasFlag(domain.FlagCriticalDomain))
}

func TestCompute_ScoreBoundsAndMonotonicity(t *testing.T) {
	e := NewEngineFromRecords(referenceCorpus())
	pool := append(referenceCorpus(),
		meta("sdk_v0.9.txt", "0.9", "sdk", false),
		meta("auth_v1.0.txt", "1.0", "auth_api", true),
		meta("notes.txt", "unknown", "general", false),
	)
	deprecated := meta("payment_v1.0_legacy.txt", "1.0", "payment_api", true)

	for i := range pool {
		for j := i; j < len(pool); j++ {
			set := results(pool[i:j+1]...)
			v := e.Compute(set)
			assert.GreaterOrEqual(t, v.Score, 0)
			assert.LessOrEqual(t, v.Score, 100)
			assert.Equal(t, LevelFor(v.Score), v.Level)

			with := e.Compute(append(set, results(deprecated)...))
			assert.GreaterOrEqual(t, with.Score, v.Score, fmt.Sprintf("set %d..%d", i, j))
		}
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, domain.RiskLow, LevelFor(0))
	assert.Equal(t, domain.RiskLow, LevelFor(34))
	assert.Equal(t, domain.RiskMedium, LevelFor(35))
	assert.Equal(t, domain.RiskMedium, LevelFor(69))
	assert.Equal(t, domain.RiskHigh, LevelFor(70))
	assert.Equal(t, domain.RiskHigh, LevelFor(100))
}

func TestParseVersion_OnlyPlainNumbers(t *testing.T) {
	for _, s := range []string{"1", "1.0", "2.10", "3.0.1"} {
		assert.NotNil(t, parseVersion(s), s)
	}
	assert.True(t, parseVersion("01.0").Equal(parseVersion("1.0")))
	for _, s := range []string{"", "unknown", "beta", "v2.0", "2.0-beta", "2.0.0+build", "2.0.0-rc.1", "1.x"} {
		assert.Nil(t, parseVersion(s), s)
	}
}

func TestCompute_PreReleaseVersionNotCompared(t *testing.T) {
	recs := []domain.Metadata{meta("config_v2.0.txt", "2.0", "config", false)}
	v := NewEngineFromRecords(recs).Compute(results(meta("config_v2.0-beta.txt", "2.0-beta", "config", false)))
	assert.False(t, v.HasFlag(domain.FlagOutdatedVersion))
	assert.False(t, v.HasFlag(domain.FlagVersionImbalance))
	assert.Equal(t, 0, v.Score)
}

func TestCompute_ImbalanceCountsNonNumericVersions(t *testing.T) {
	recs := []domain.Metadata{
		meta("config_v1.0.txt", "1.0", "config", false),
		meta("config_v3.0.txt", "3.0", "config", false),
	}
	e := NewEngineFromRecords(recs)

	v := e.Compute(results(
		meta("config_v1.0.txt", "1.0", "config", false),
		meta("config_beta.txt", "beta", "config", false),
	))
	assert.False(t, v.HasFlag(domain.FlagVersionImbalance))

	v = e.Compute(results(
		meta("config_v1.0.txt", "1.0", "config", false),
		meta("notes.txt", "unknown", "config", false),
	))
	assert.True(t, v.HasFlag(domain.FlagVersionImbalance))
}

func TestComputeFacts_DeprecatedFileIsNotANotice(t *testing.T) {
	recs := []domain.Metadata{
		meta("config_v2.0_deprecated.txt", "2.0", "config", true),
		meta("config_v3.0.txt", "3.0", "config", false),
	}
	e := NewEngineFromRecords(recs)
	assert.False(t, e.Facts().DeprecationNoticeExists)

	// 50 deprecated + 10 imbalance, no ignoring-deprecation penalty.
	v := e.Compute(results(meta("config_v2.0_deprecated.txt", "2.0", "config", true)))
	assert.Equal(t, 60, v.Score)
	assert.Equal(t, domain.RiskMedium, v.Level)
	assert.False(t, v.HasFlag(domain.FlagIgnoringDeprecation))

	withSunset := NewEngineFromRecords(append(recs, meta("api_sunset.txt", "unknown", "general", false)),
		WithNoticeMarkers([]string{"deprecation", "sunset"}))
	assert.True(t, withSunset.Facts().DeprecationNoticeExists)
}
