package analysis

import (
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
)

// AssignPerformance 按当前数据集Views的平均值给每个视频打High/Low标签，
// 并返回本次使用的阈值。阈值每次调用重新计算，不做缓存。
// 等于平均值的记录计为High，因此除非所有Views相等，至少有一条记录为Low。
func AssignPerformance(stats []*core.VideoStats) (labels []string, threshold float64, err error) {
	if len(stats) == 0 {
		return nil, 0, errors.Wrap(core.ErrInvalidInput, "数据集为空，平均值无定义")
	}

	sum := float64(0)
	for _, s := range stats {
		sum += float64(s.Views)
	}
	threshold = sum / float64(len(stats))

	labels = make([]string, len(stats))
	for i, s := range stats {
		if float64(s.Views) >= threshold {
			labels[i] = core.PerformanceHigh
		} else {
			labels[i] = core.PerformanceLow
		}
	}

	return labels, threshold, nil
}
