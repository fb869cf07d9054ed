package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroyle/depthroute/src/config"
)

func TestHeuristicScore_Deterministic(t *testing.T) {
	msg := "Explain why distributed consensus is hard"

	first := HeuristicScore(msg, nil)
	second := HeuristicScore(msg, nil)

	assert.Equal(t, first, second)
}

func TestHeuristicScore_KeywordsRaiseScore(t *testing.T) {
	plain := HeuristicScore("what time is it", nil)
	deep := HeuristicScore("explain and analyze why this happens", nil)

	assert.Greater(t, deep.Score, plain.Score)
}

func TestHeuristicScore_CappedAtMax(t *testing.T) {
	msg := "explain analyze compare evaluate why reasoning detailed meaning philosophy consciousness implications " +
		strings.Repeat("and elaborate at considerable length on everything ", 50)

	score := HeuristicScore(msg, nil)
	assert.Equal(t, MaxScore, score.Score)
}

func TestHeuristicScore_CustomVocabulary(t *testing.T) {
	keywords := []string{"quantum"}

	hit := HeuristicScore("quantum states", keywords)
	miss := HeuristicScore("classical states", keywords)

	assert.Greater(t, hit.Score, miss.Score)
}

func TestParseScoreReply(t *testing.T) {
	cases := []struct {
		reply         string
		wantScore     int
		wantRationale string
	}{
		{"72. Requires layered reasoning.", 72, "Requires layered reasoning."},
		{"100", 100, "model-scored"},
		{"0 - small talk", 0, "small talk"},
	}

	for _, tc := range cases {
		score, err := ParseScoreReply(tc.reply)
		require.NoError(t, err, tc.reply)
		assert.Equal(t, tc.wantScore, score.Score)
		assert.Equal(t, tc.wantRationale, score.Rationale)
	}
}

func TestParseScoreReply_Rejects(t *testing.T) {
	for _, reply := range []string{"", "I cannot rate that.", "150 way too deep"} {
		_, err := ParseScoreReply(reply)
		assert.Error(t, err, reply)
	}
}

func newTestSelector() *Selector {
	return NewSelector(&config.RouterConfig{
		ComplexityThreshold: 50,
		HighModel:           "model-high",
		FastModel:           "model-fast",
	})
}

func TestSelector_ThresholdIsExclusiveOnTheLowSide(t *testing.T) {
	s := newTestSelector()

	assert.Equal(t, "model-fast", s.Decide(0).Model)
	assert.Equal(t, "model-fast", s.Decide(50).Model)
	assert.Equal(t, "model-high", s.Decide(51).Model)
	assert.Equal(t, "model-high", s.Decide(100).Model)
}

func TestSelector_DecisionCarriesReason(t *testing.T) {
	s := newTestSelector()

	high := s.Decide(80)
	assert.True(t, high.HighCapability)
	assert.NotEmpty(t, high.Reason)

	fast := s.Decide(10)
	assert.False(t, fast.HighCapability)
	assert.NotEmpty(t, fast.Reason)
}

func BenchmarkHeuristicScore(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HeuristicScore("explain how caching works in detail", nil)
	}
}
