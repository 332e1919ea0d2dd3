package analysis

import (
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func testStats() []*core.VideoStats {
	return []*core.VideoStats{
		{VideoID: "a", Title: "low-1", Views: 10, Likes: 1, Comments: 0},
		{VideoID: "b", Title: "outlier", Views: 1000, Likes: 100, Comments: 50},
		{VideoID: "c", Title: "low-2", Views: 20, Likes: 2, Comments: 1},
	}
}

func TestFeatureMatrix(t *testing.T) {
	data := FeatureMatrix(testStats())
	assert.Equal(t, 3, len(data))
	assert.Equal(t, core.NumFeatureFields, len(data[0]))
	assert.Equal(t, float32(1000), data[1][0])
	assert.Equal(t, float32(0), data[0][2])
}

func TestAssignClusters(t *testing.T) {
	stats := testStats()

	class, centers, err := AssignClusters(stats, 2, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(stats), len(class))
	assert.Equal(t, 2, len(centers))
	for _, c := range class {
		assert.Condition(t, func() (success bool) {
			return c >= 0 && c < 2
		})
	}

	// 两个低播放量视频聚在一起，高播放量的离群点单独一类。
	// 类别号按中心特征值升序编号
	assert.Equal(t, []int{0, 1, 0}, class)
}

func TestAssignClustersNilContext(t *testing.T) {
	assert.NotPanics(t, func() {
		class, centers, err := AssignClusters(testStats(), 2, nil)
		assert.NoError(t, err)
		assert.Equal(t, 3, len(class))
		assert.Equal(t, 2, len(centers))
	})
}

func TestAssignClustersDeterminism(t *testing.T) {
	stats := testStats()
	ctx := &KMeansContext{Round: KMeansDefaultRound, Seed: KMeansDefaultSeed}

	first, _, err := AssignClusters(stats, 2, ctx)
	assert.NoError(t, err)
	second, _, err := AssignClusters(stats, 2, ctx)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssignClustersLabelRange(t *testing.T) {
	stats := make([]*core.VideoStats, 10)
	for i := 0; i < len(stats); i++ {
		stats[i] = &core.VideoStats{
			Views:    uint64(i * 100),
			Likes:    uint64(i * 10),
			Comments: uint64(i),
		}
	}

	for k := 1; k <= len(stats); k++ {
		class, _, err := AssignClusters(stats, k, nil)
		assert.NoError(t, err)
		assert.Equal(t, len(stats), len(class))
		for _, c := range class {
			assert.Condition(t, func() (success bool) {
				return c >= 0 && c < k
			})
		}
	}
}

func TestAssignClustersInvalidInput(t *testing.T) {
	_, _, err := AssignClusters(nil, 2, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, _, err = AssignClusters(testStats(), 5, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, _, err = AssignClusters(testStats(), 0, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestCentersToCentroids(t *testing.T) {
	centers := [][]float32{
		{15, 1.5, 0.5},
		{1000, 100, 50},
	}
	centroids := CentersToCentroids(centers)
	assert.Equal(t, 2, len(centroids))
	assert.Equal(t, uint(0), centroids[0].ClusterId)
	assert.Equal(t, float32(15), centroids[0].Views)
	assert.Equal(t, float32(50), centroids[1].Comments)
}
