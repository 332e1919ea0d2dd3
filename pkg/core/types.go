package core

import (
	"reflect"
	"time"
)

// VideoStats 一条视频的统计数据快照。数据来自YouTube Data API或已导出的CSV文件。
// 三个聚类特征（Views、Likes、Comments）缺失时按0处理，其余字段缺失保持零值。
type VideoStats struct {
	VideoID     string    `json:"videoId"`
	Title       string    `json:"title"`
	UploadDate  time.Time `json:"uploadDate"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	Views       uint64    `json:"views"`
	Likes       uint64    `json:"likes"`
	Dislikes    uint64    `json:"dislikes"`
	Comments    uint64    `json:"comments"`
	URL         string    `json:"url"`
}

// FeatureData 聚类使用的三维特征向量
type FeatureData struct {
	Views    float32 `json:"views"`
	Likes    float32 `json:"likes"`
	Comments float32 `json:"comments"`
}

var NumFeatureFields = reflect.TypeOf(FeatureData{}).NumField()

// ClusterCentroid 一个类别的特征中心
type ClusterCentroid struct {
	ClusterId uint `json:"clusterId"`
	FeatureData
}

// Performance标签的取值。阈值为当前数据集Views的算术平均值，等于阈值的记录计为High。
const (
	PerformanceHigh = "High"
	PerformanceLow  = "Low"
)
