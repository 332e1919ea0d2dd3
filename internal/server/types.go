package server

// Insight 一个视频的聚类与性能标签
type Insight struct {
	VideoID     string
	Cluster     int
	Performance string
}
