package analysis

import (
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"sort"
)

// ClusterEngagement 一个类别内视频的数量与各项指标的平均值
type ClusterEngagement struct {
	ClusterId   int     `json:"clusterId"`
	Count       int     `json:"count"`
	ViewsAvg    float64 `json:"viewsAvg"`
	LikesAvg    float64 `json:"likesAvg"`
	CommentsAvg float64 `json:"commentsAvg"`
}

// EngagementSummary 互动数据汇总。TotalLikes与TotalComments为精确整数和，
// Clusters按类别号升序排列，没有成员的类别不会出现。
type EngagementSummary struct {
	TotalLikes    uint64               `json:"totalLikes"`
	TotalComments uint64               `json:"totalComments"`
	Clusters      []*ClusterEngagement `json:"clusters,omitempty"`
}

// AggregateEngagement 汇总所有视频的Likes与Comments总和。
// class不为nil时，同时按类别计算各项指标的平均值，长度必须与stats一致。
func AggregateEngagement(stats []*core.VideoStats, class []int) (*EngagementSummary, error) {
	if class != nil && len(class) != len(stats) {
		return nil, errors.Wrap(core.ErrInvalidInput,
			fmt.Sprintf("类别标签数量%d与记录数量%d不一致", len(class), len(stats)))
	}

	summary := &EngagementSummary{}
	for _, s := range stats {
		summary.TotalLikes += s.Likes
		summary.TotalComments += s.Comments
	}

	if class == nil {
		return summary, nil
	}

	m := make(map[int]*ClusterEngagement)
	for i, s := range stats {
		ce, ok := m[class[i]]
		if !ok {
			ce = &ClusterEngagement{ClusterId: class[i]}
			m[class[i]] = ce
		}
		ce.Count++
		ce.ViewsAvg += float64(s.Views)
		ce.LikesAvg += float64(s.Likes)
		ce.CommentsAvg += float64(s.Comments)
	}

	summary.Clusters = make([]*ClusterEngagement, 0, len(m))
	for _, ce := range m {
		// ce.Count必然大于0，不会出现除零
		ce.ViewsAvg /= float64(ce.Count)
		ce.LikesAvg /= float64(ce.Count)
		ce.CommentsAvg /= float64(ce.Count)
		summary.Clusters = append(summary.Clusters, ce)
	}
	sort.Slice(summary.Clusters, func(i, j int) bool {
		return summary.Clusters[i].ClusterId < summary.Clusters[j].ClusterId
	})

	return summary, nil
}
