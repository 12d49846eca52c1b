package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPositionCurve(t *testing.T) {
	curve := DefaultPositionCurve()

	tests := []struct {
		rank int
		want float64
	}{
		{1, 100},
		{2, 75},
		{3, 50},
		{4, 30},
		{5, 15},
		{6, 0},
		{RankAbsent, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, curve(tt.rank), "rank %d", tt.rank)
	}
}

func TestTablePositionCurve_CopiesTable(t *testing.T) {
	table := map[int]float64{1: 10}
	curve := TablePositionCurve(table)
	table[1] = 99

	assert.Equal(t, 10.0, curve(1))
}

func TestScoringModel_EqualWeights(t *testing.T) {
	m := DefaultScoringModel()

	// Average over platforms present: (100 + 75 + 75) / 3
	score := m.Score(map[Platform]int{
		PlatformChatGPT:    1,
		PlatformPerplexity: 2,
		PlatformGoogleAI:   2,
	})
	assert.Equal(t, 83.33, score)

	// Only two platforms present
	assert.Equal(t, 87.5, m.Score(map[Platform]int{PlatformChatGPT: 1, PlatformPerplexity: 2}))

	// Brand absent on a present platform drags the average down
	assert.Equal(t, 50.0, m.Score(map[Platform]int{PlatformChatGPT: 1, PlatformGoogleAI: RankAbsent}))
}

func TestScoringModel_NoPlatforms(t *testing.T) {
	assert.Equal(t, 0.0, DefaultScoringModel().Score(nil))
}

func TestScoringModel_Weighted(t *testing.T) {
	m := ScoringModel{Curve: DefaultPositionCurve(), Weights: DefaultPlatformWeights()}

	// 0.40*100 + 0.35*75 + 0.25*75 = 85
	score := m.Score(map[Platform]int{
		PlatformChatGPT:    1,
		PlatformPerplexity: 2,
		PlatformGoogleAI:   2,
	})
	assert.Equal(t, 85.0, score)
}

func TestScoringModel_NilCurveUsesDefault(t *testing.T) {
	m := ScoringModel{}
	assert.Equal(t, 100.0, m.PlatformScore(1))
}

func TestScoringModel_Deterministic(t *testing.T) {
	m := ScoringModel{Curve: DefaultPositionCurve(), Weights: DefaultPlatformWeights()}
	ranks := map[Platform]int{PlatformChatGPT: 3, PlatformPerplexity: 4, PlatformGoogleAI: 5}

	first := m.Score(ranks)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, m.Score(ranks))
	}
}

func TestCompetitiveGap(t *testing.T) {
	assert.Equal(t, 8.2, CompetitiveGap(72.5, []float64{64.3, 58.2, 48.1}))
	assert.Equal(t, -3.5, CompetitiveGap(68.2, []float64{71.7, 32.4, 28.6}))
	assert.Equal(t, 40.0, CompetitiveGap(40, nil))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-5))
	assert.Equal(t, 100.0, ClampScore(120))
	assert.Equal(t, 42.0, ClampScore(42))
}
