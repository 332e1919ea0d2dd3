package server

import "time"

// VideoInsight 单个视频的分析结果
type VideoInsight struct {
	VideoID     string    `json:"videoId"`
	Title       string    `json:"title"`
	UploadDate  time.Time `json:"uploadDate"`
	Views       uint64    `json:"views"`
	Likes       uint64    `json:"likes"`
	Comments    uint64    `json:"comments"`
	Cluster     int       `json:"cluster"`
	Performance string    `json:"performance"`
}

// DashboardSummary 频道整体概况
type DashboardSummary struct {
	ChannelID     string    `json:"channelId"`
	TotalVideos   int       `json:"totalVideos"`
	TotalViews    uint64    `json:"totalViews"`
	TotalLikes    uint64    `json:"totalLikes"`
	TotalComments uint64    `json:"totalComments"`
	AvgViews      float64   `json:"avgViews"`
	LastRefreshed time.Time `json:"lastRefreshed"`
	LastAnalyzed  time.Time `json:"lastAnalyzed"`
}

// TimePoint Views随时间变化曲线上的一个点，按上传日期升序返回
type TimePoint struct {
	UploadDate time.Time `json:"uploadDate"`
	Title      string    `json:"title"`
	Views      uint64    `json:"views"`
}

// TopVideo 播放量排行中的一项
type TopVideo struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Views   uint64 `json:"views"`
}

// ClusterPoint Views-Likes散点图上的一个点，带类别标签
type ClusterPoint struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Views   uint64 `json:"views"`
	Likes   uint64 `json:"likes"`
	Cluster int    `json:"cluster"`
}

// PerformanceReport 性能预测表。Threshold为本次分析使用的平均播放量阈值。
type PerformanceReport struct {
	Threshold float64         `json:"threshold"`
	Rows      []*VideoInsight `json:"rows"`
}

type API interface {
	// QueryVideoInsight 查询单个视频的聚类与性能标签。视频不存在时返回ErrVideoNotFound，
	// 尚未执行过分析时返回ErrNotAnalyzed。
	QueryVideoInsight(videoId string) (*VideoInsight, error)
	// QueryDashboardSummary 查询频道概况
	QueryDashboardSummary() (*DashboardSummary, error)
	// ReAnalyze 触发一次重新分析
	ReAnalyze()
}
