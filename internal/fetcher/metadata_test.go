package fetcher

import (
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func fetcherTestVideos() []*core.VideoStats {
	return []*core.VideoStats{
		{VideoID: "v1", UploadDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Views: 100, Likes: 10, Comments: 5},
		{VideoID: "v2", UploadDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Views: 300, Likes: 30, Comments: 15},
		{VideoID: "v3", UploadDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Views: 200, Likes: 20, Comments: 10},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(fetcherTestVideos())
	assert.Equal(t, 3, summary.TotalVideos)
	assert.Equal(t, uint64(600), summary.TotalViews)
	assert.Equal(t, uint64(60), summary.TotalLikes)
	assert.Equal(t, uint64(30), summary.TotalComments)
	assert.Equal(t, float64(200), summary.AvgViewsPerVideo)
	assert.Equal(t, 2023, summary.DateRange.Earliest.Year())
	assert.Equal(t, time.Month(1), summary.DateRange.Earliest.Month())
	assert.Equal(t, time.Month(3), summary.DateRange.Latest.Month())
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.TotalVideos)
	assert.Equal(t, uint64(0), summary.TotalViews)
	assert.Equal(t, float64(0), summary.AvgViewsPerVideo)
}

func TestBuildMetadata(t *testing.T) {
	info := &ChannelInfo{ChannelID: "c1", ChannelName: "测试频道"}
	metadata := BuildMetadata(info, fetcherTestVideos(), "data/main.csv", "data/backup.csv")
	assert.Equal(t, info, metadata.ChannelInfo)
	assert.Equal(t, 3, metadata.DataSummary.TotalVideos)
	assert.Equal(t, "data/main.csv", metadata.Files.MainCsv)
	assert.Equal(t, "data/backup.csv", metadata.Files.BackupCsv)
	assert.False(t, metadata.FetchTimestamp.IsZero())
}
