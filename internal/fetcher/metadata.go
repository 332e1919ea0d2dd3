package fetcher

import (
	"encoding/json"
	"github.com/packagewjx/channel-analytics/internal/dataset"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"os"
	"time"
)

// FetchMetadata 元数据文件的内容，字段名与原始导出脚本的JSON格式保持一致
type FetchMetadata struct {
	FetchTimestamp time.Time    `json:"fetch_timestamp"`
	ChannelInfo    *ChannelInfo `json:"channel_info"`
	DataSummary    *DataSummary `json:"data_summary"`
	Files          FilePaths    `json:"files"`
}

type DataSummary struct {
	TotalVideos      int       `json:"total_videos"`
	TotalViews       uint64    `json:"total_views"`
	TotalLikes       uint64    `json:"total_likes"`
	TotalComments    uint64    `json:"total_comments"`
	AvgViewsPerVideo float64   `json:"avg_views_per_video"`
	DateRange        DateRange `json:"date_range"`
}

type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

type FilePaths struct {
	MainCsv   string `json:"main_csv"`
	BackupCsv string `json:"backup_csv"`
}

// Summarize 计算数据集的汇总统计。空数据集返回零值汇总。
func Summarize(videos []*core.VideoStats) *DataSummary {
	summary := &DataSummary{TotalVideos: len(videos)}
	if len(videos) == 0 {
		return summary
	}

	summary.DateRange.Earliest = videos[0].UploadDate
	summary.DateRange.Latest = videos[0].UploadDate
	for _, v := range videos {
		summary.TotalViews += v.Views
		summary.TotalLikes += v.Likes
		summary.TotalComments += v.Comments
		if v.UploadDate.Before(summary.DateRange.Earliest) {
			summary.DateRange.Earliest = v.UploadDate
		}
		if v.UploadDate.After(summary.DateRange.Latest) {
			summary.DateRange.Latest = v.UploadDate
		}
	}
	summary.AvgViewsPerVideo = float64(summary.TotalViews) / float64(len(videos))

	return summary
}

func BuildMetadata(info *ChannelInfo, videos []*core.VideoStats, mainCsv, backupCsv string) *FetchMetadata {
	return &FetchMetadata{
		FetchTimestamp: time.Now(),
		ChannelInfo:    info,
		DataSummary:    Summarize(videos),
		Files: FilePaths{
			MainCsv:   mainCsv,
			BackupCsv: backupCsv,
		},
	}
}

func writeCsvFile(path string, videos []*core.VideoStats) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "创建CSV文件失败")
	}
	defer func() {
		_ = f.Close()
	}()

	return dataset.WriteVideoStats(f, videos)
}

func writeMetadataFile(path string, metadata *FetchMetadata) error {
	marshal, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return errors.Wrap(err, "序列化元数据失败")
	}
	err = os.WriteFile(path, marshal, 0644)
	if err != nil {
		return errors.Wrap(err, "写入元数据文件失败")
	}
	return nil
}
