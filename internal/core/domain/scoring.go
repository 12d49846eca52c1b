package domain

import "math"

// PositionCurve maps a rank position to a per-platform score.
// Rank 1 must score highest; RankAbsent must score 0.
type PositionCurve func(rank int) float64

// DefaultPositionScores is the stock rank table: 1→100, 2→75, 3→50, 4→30, 5→15.
// Ranks beyond the table and absent brands score 0.
func DefaultPositionScores() map[int]float64 {
	return map[int]float64{1: 100, 2: 75, 3: 50, 4: 30, 5: 15}
}

// TablePositionCurve builds a curve from a rank→score table.
func TablePositionCurve(table map[int]float64) PositionCurve {
	scores := make(map[int]float64, len(table))
	for rank, score := range table {
		scores[rank] = score
	}
	return func(rank int) float64 {
		if rank <= RankAbsent {
			return 0
		}
		return scores[rank]
	}
}

// DefaultPositionCurve returns the curve over DefaultPositionScores.
func DefaultPositionCurve() PositionCurve {
	return TablePositionCurve(DefaultPositionScores())
}

// ScoringModel turns per-platform ranks into a visibility score.
// With no weights every present platform counts equally; with weights the
// score is the weighted average over the platforms present.
type ScoringModel struct {
	Curve   PositionCurve
	Weights map[Platform]float64
}

// DefaultScoringModel returns the equal-weight model over the default curve.
func DefaultScoringModel() ScoringModel {
	return ScoringModel{Curve: DefaultPositionCurve()}
}

// DefaultPlatformWeights are the traffic-share weights used by the weighted model.
func DefaultPlatformWeights() map[Platform]float64 {
	return map[Platform]float64{
		PlatformChatGPT:    0.40,
		PlatformPerplexity: 0.35,
		PlatformGoogleAI:   0.25,
	}
}

// PlatformScore scores a single rank position.
func (m ScoringModel) PlatformScore(rank int) float64 {
	if m.Curve == nil {
		return DefaultPositionCurve()(rank)
	}
	return m.Curve(rank)
}

func (m ScoringModel) weight(p Platform) float64 {
	if len(m.Weights) == 0 {
		return 1
	}
	return m.Weights[p]
}

// Score combines ranks keyed by platform. ranks must hold an entry for every
// platform present for the query; a brand missing on a present platform
// carries RankAbsent. Platforms are visited in a fixed order so repeated
// calls are bit-identical.
func (m ScoringModel) Score(ranks map[Platform]int) float64 {
	var total, weights float64
	for _, p := range AllPlatforms() {
		rank, ok := ranks[p]
		if !ok {
			continue
		}
		w := m.weight(p)
		total += w * m.PlatformScore(rank)
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return ClampScore(Round2(total / weights))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampScore bounds a visibility score to [0, 100].
func ClampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// CompetitiveGap is the primary score minus the best competitor score,
// rounded to two decimals. Without competitors the gap is the primary score.
func CompetitiveGap(primary float64, competitors []float64) float64 {
	if len(competitors) == 0 {
		return Round2(primary)
	}
	best := competitors[0]
	for _, s := range competitors[1:] {
		if s > best {
			best = s
		}
	}
	return Round2(primary - best)
}
