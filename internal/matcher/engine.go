// Package matcher decides whether an externally-referenced track already
// exists in the local library.
//
// The engine runs a tiered strategy against the reference index, cheapest and
// most precise first: an exact lookup on normalized fields, a relaxed lookup
// tolerating an empty indexed artist, and finally token-set fuzzy scoring over
// a prefix-filtered candidate set. A filesystem probe acts as a last-resort
// guard against index staleness and is composed in via [Engine.VerifyComprehensive].
package matcher

import (
	"strings"

	"github.com/charmbracelet/log"

	"trackdex/internal/index"
	"trackdex/internal/models"
	"trackdex/internal/normalizer"
)

// DefaultThresholds is the descending confidence ladder for the fuzzy tier.
// A candidate clears the tier at the highest threshold its combined score meets.
var DefaultThresholds = []int{90, 80, 70, 60}

// Scoring weights for the combined fuzzy score when both a query artist and
// an indexed artist are present.
const (
	titleWeight  = 0.7
	artistWeight = 0.3
)

// Index is the read-only view of the reference index consumed by the engine.
type Index interface {
	ExactLookup(titleClean, artistClean string) (bool, error)
	RelaxedLookup(titleClean string) (bool, error)
	CandidateLookup(titleClean, artistClean string) ([]index.Candidate, error)
}

// Engine implements the tiered match strategy. It only reads the index;
// ownership of index mutation stays with the indexer.
type Engine struct {
	store  Index
	prober *Prober
	logger *log.Logger

	// Thresholds is the descending confidence ladder used by the fuzzy
	// tier. Overridable for tests; defaults to [DefaultThresholds].
	Thresholds []int
}

// NewEngine creates a match engine over the given index view. The prober may
// be nil, in which case VerifyComprehensive skips the filesystem tier.
func NewEngine(store Index, prober *Prober, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:      store,
		prober:     prober,
		logger:     logger,
		Thresholds: DefaultThresholds,
	}
}

// Verify decides whether the given free-text (title, artist) pair exists in
// the reference index, short-circuiting on the first tier that hits.
//
// An empty title immediately reports a miss without touching the store.
// Errors during fuzzy candidate retrieval degrade to the exact-tier result
// rather than failing the call.
func (e *Engine) Verify(title, artist string) models.MatchVerdict {
	if strings.TrimSpace(title) == "" {
		return models.MatchVerdict{Exists: false, Method: models.MatchNone}
	}

	titleClean := normalizer.Clean(title)
	artistClean := normalizer.Clean(artist)

	if ok, err := e.store.ExactLookup(titleClean, artistClean); err != nil {
		e.logger.Warn("exact lookup failed", "title", titleClean, "err", err)
	} else if ok {
		return models.MatchVerdict{Exists: true, Method: models.MatchExact}
	}

	// Relaxed-artist tier: a title hit against a row whose artist metadata
	// was never captured counts as exact for ledger purposes.
	if artistClean != "" {
		if ok, err := e.store.RelaxedLookup(titleClean); err != nil {
			e.logger.Warn("relaxed lookup failed", "title", titleClean, "err", err)
		} else if ok {
			return models.MatchVerdict{Exists: true, Method: models.MatchExact}
		}
	}

	candidates, err := e.store.CandidateLookup(titleClean, artistClean)
	if err != nil {
		// Partial-failure tolerance: fall back to the exact-tier miss
		// already established instead of propagating.
		e.logger.Warn("candidate retrieval failed, degrading to exact result", "title", titleClean, "err", err)
		return models.MatchVerdict{Exists: false, Method: models.MatchNone}
	}

	if e.fuzzyMatch(titleClean, artistClean, candidates) {
		return models.MatchVerdict{Exists: true, Method: models.MatchFuzzy}
	}

	return models.MatchVerdict{Exists: false, Method: models.MatchNone}
}

// fuzzyMatch scores every candidate once, then walks the threshold ladder
// from the top: thresholds outer, candidates inner, returning on the first
// candidate clearing the current threshold. This reports the highest
// confidence tier reached rather than merely "at least the floor".
func (e *Engine) fuzzyMatch(titleClean, artistClean string, candidates []index.Candidate) bool {
	if len(candidates) == 0 {
		return false
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = combinedScore(titleClean, artistClean, c)
	}

	for _, threshold := range e.Thresholds {
		for i, score := range scores {
			if score >= float64(threshold) {
				e.logger.Debug("fuzzy match",
					"title", titleClean,
					"candidate", candidates[i].TitleClean,
					"score", score,
					"threshold", threshold)
				return true
			}
		}
	}

	return false
}

// combinedScore weighs title and artist token-set similarity 0.7/0.3 when
// both sides carry an artist, and falls back to the title score alone so
// missing artist metadata is not penalized.
func combinedScore(titleClean, artistClean string, c index.Candidate) float64 {
	titleScore := float64(normalizer.TokenSetRatio(titleClean, c.TitleClean))
	if artistClean == "" || c.ArtistClean == "" {
		return titleScore
	}
	artistScore := float64(normalizer.TokenSetRatio(artistClean, c.ArtistClean))
	return titleWeight*titleScore + artistWeight*artistScore
}

// VerifyComprehensive runs the match engine and, only on a clean miss, the
// filesystem fallback probe, aggregating both into a single verdict with
// provenance. Used by reconciliation and cleanup workflows.
func (e *Engine) VerifyComprehensive(title, artist string) models.Verification {
	verdict := e.Verify(title, artist)

	result := models.Verification{
		Exists: verdict.Exists,
		Method: verdict.Method,
	}

	switch verdict.Method {
	case models.MatchExact:
		result.ExistsExact = true
	case models.MatchFuzzy:
		result.ExistsFuzzy = true
	}

	if !verdict.Exists && e.prober != nil {
		if e.prober.Probe(title, artist) {
			result.ExistsFilesystem = true
			result.Exists = true
			result.Method = models.MatchFilesystem
		}
	}

	return result
}
