package analysis

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestAnalyze(t *testing.T) {
	stats := testStats()

	result, err := Analyze(stats, 2, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(stats), len(result.Class))
	assert.Equal(t, len(stats), len(result.Performance))
	assert.Equal(t, 2, len(result.Centroids))
	assert.InDelta(t, 343.33, result.Threshold, 0.01)
	assert.Equal(t, uint64(103), result.Engagement.TotalLikes)
	assert.Equal(t, 2, len(result.Engagement.Clusters))
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(nil, 2, nil)
	assert.Error(t, err)
}
