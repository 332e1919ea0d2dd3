package server

import (
	"github.com/packagewjx/channel-analytics/internal/analysis"
	"github.com/packagewjx/channel-analytics/internal/fetcher"
	"github.com/packagewjx/channel-analytics/pkg/server"
	"sort"
)

var _ server.API = &serverImpl{}

func (s *serverImpl) QueryVideoInsight(videoId string) (*server.VideoInsight, error) {
	s.logger.Printf("接收到查询视频%s分析结果的请求\n", videoId)
	insight, err := s.dao.QueryInsightByVideoId(videoId)
	if err == server.ErrVideoNotFound || err == server.ErrNotAnalyzed {
		return nil, err
	} else if err != nil {
		s.logger.Printf("查询VideoInsight失败，原因为：%v\n", err)
		return nil, err
	}

	return insight, nil
}

func (s *serverImpl) QueryDashboardSummary() (*server.DashboardSummary, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}

	summary := fetcher.Summarize(stats)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return &server.DashboardSummary{
		ChannelID:     s.config.ChannelID,
		TotalVideos:   summary.TotalVideos,
		TotalViews:    summary.TotalViews,
		TotalLikes:    summary.TotalLikes,
		TotalComments: summary.TotalComments,
		AvgViews:      summary.AvgViewsPerVideo,
		LastRefreshed: s.lastRefreshed,
		LastAnalyzed:  s.lastAnalyzed,
	}, nil
}

// QueryViewsOverTime 返回按上传日期升序排列的播放量序列
func (s *serverImpl) QueryViewsOverTime() ([]*server.TimePoint, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].UploadDate.Before(stats[j].UploadDate)
	})

	points := make([]*server.TimePoint, len(stats))
	for i, v := range stats {
		points[i] = &server.TimePoint{
			UploadDate: v.UploadDate,
			Title:      v.Title,
			Views:      v.Views,
		}
	}
	return points, nil
}

// QueryTopVideos 返回播放量最高的n个视频
func (s *serverImpl) QueryTopVideos(n int) ([]*server.TopVideo, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Views > stats[j].Views
	})
	if n > len(stats) {
		n = len(stats)
	}

	top := make([]*server.TopVideo, n)
	for i := 0; i < n; i++ {
		top[i] = &server.TopVideo{
			VideoID: stats[i].VideoID,
			Title:   stats[i].Title,
			Views:   stats[i].Views,
		}
	}
	return top, nil
}

// QueryEngagement 返回互动汇总。总和覆盖所有视频，
// 按类别的平均值仅覆盖已有分析结果的视频。
func (s *serverImpl) QueryEngagement() (*analysis.EngagementSummary, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}

	summary, err := analysis.AggregateEngagement(stats, nil)
	if err != nil {
		return nil, err
	}

	insights, err := s.dao.QueryAllInsights()
	if err != nil {
		return nil, err
	}
	if len(insights) == 0 {
		return summary, nil
	}

	analyzed := stats[:0:0]
	class := make([]int, 0, len(stats))
	for _, v := range stats {
		if ins, ok := insights[v.VideoID]; ok {
			analyzed = append(analyzed, v)
			class = append(class, ins.Cluster)
		}
	}

	grouped, err := analysis.AggregateEngagement(analyzed, class)
	if err != nil {
		return nil, err
	}
	summary.Clusters = grouped.Clusters

	return summary, nil
}

// QueryClusterPoints 返回带类别标签的Views-Likes散点，没有分析结果的视频不包含在内
func (s *serverImpl) QueryClusterPoints() ([]*server.ClusterPoint, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}
	insights, err := s.dao.QueryAllInsights()
	if err != nil {
		return nil, err
	}

	points := make([]*server.ClusterPoint, 0, len(stats))
	for _, v := range stats {
		ins, ok := insights[v.VideoID]
		if !ok {
			continue
		}
		points = append(points, &server.ClusterPoint{
			VideoID: v.VideoID,
			Title:   v.Title,
			Views:   v.Views,
			Likes:   v.Likes,
			Cluster: ins.Cluster,
		})
	}
	return points, nil
}

// QueryPerformanceReport 返回性能预测表。阈值按当前最新统计数据重新计算。
func (s *serverImpl) QueryPerformanceReport() (*server.PerformanceReport, error) {
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return nil, err
	}
	insights, err := s.dao.QueryAllInsights()
	if err != nil {
		return nil, err
	}

	report := &server.PerformanceReport{Rows: make([]*server.VideoInsight, 0, len(stats))}
	if len(stats) == 0 {
		return report, nil
	}

	sum := float64(0)
	for _, v := range stats {
		sum += float64(v.Views)
	}
	report.Threshold = sum / float64(len(stats))

	for _, v := range stats {
		ins, ok := insights[v.VideoID]
		if !ok {
			continue
		}
		report.Rows = append(report.Rows, &server.VideoInsight{
			VideoID:     v.VideoID,
			Title:       v.Title,
			UploadDate:  v.UploadDate,
			Views:       v.Views,
			Likes:       v.Likes,
			Comments:    v.Comments,
			Cluster:     ins.Cluster,
			Performance: ins.Performance,
		})
	}

	return report, nil
}

func (s *serverImpl) ReAnalyze() {
	s.executeReAnalyze <- struct{}{}
}
