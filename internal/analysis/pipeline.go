package analysis

import (
	"github.com/packagewjx/channel-analytics/pkg/core"
)

// Result 一次完整分析的输出。Class与Performance的下标与输入记录一一对应。
type Result struct {
	Class       []int
	Centroids   []*core.ClusterCentroid
	Performance []string
	Threshold   float64
	Engagement  *EngagementSummary
}

// Analyze 执行完整的分析流水线：聚类、性能标签、互动汇总。
// 每次调用对输入全量重新计算，不保留任何跨调用状态。
func Analyze(stats []*core.VideoStats, numClass int, context *KMeansContext) (*Result, error) {
	class, centers, err := AssignClusters(stats, numClass, context)
	if err != nil {
		return nil, err
	}

	performance, threshold, err := AssignPerformance(stats)
	if err != nil {
		return nil, err
	}

	engagement, err := AggregateEngagement(stats, class)
	if err != nil {
		return nil, err
	}

	return &Result{
		Class:       class,
		Centroids:   CentersToCentroids(centers),
		Performance: performance,
		Threshold:   threshold,
		Engagement:  engagement,
	}, nil
}
