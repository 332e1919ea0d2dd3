package server

import (
	"github.com/packagewjx/channel-analytics/pkg/core"
	"gorm.io/gorm"
	"time"
)

type VideoDO struct {
	gorm.Model
	VideoID     string `gorm:"uniqueIndex;type:VARCHAR(64)"`
	Title       string `gorm:"type:VARCHAR(512)"`
	UploadDate  time.Time
	Description string `gorm:"type:TEXT"`
	Duration    string `gorm:"type:VARCHAR(32)"`
	URL         string `gorm:"type:VARCHAR(256)"`
}

type VideoStatsDO struct {
	gorm.Model
	VideoId   uint   `gorm:"uniqueIndex:unique_snapshot"`
	Timestamp uint64 `gorm:"uniqueIndex:unique_snapshot"`
	Views     uint64
	Likes     uint64
	Dislikes  uint64
	Comments  uint64
}

type VideoInsightDO struct {
	gorm.Model
	VideoId     uint `gorm:"uniqueIndex"`
	ClusterId   int
	Performance string `gorm:"type:VARCHAR(8)"`
}

type ClusterCentroidDO struct {
	gorm.Model
	ClusterId uint `gorm:"uniqueIndex"`
	core.FeatureData
}
