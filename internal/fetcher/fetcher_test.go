package fetcher

import (
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/youtube/v3"
	"strings"
	"testing"
)

func TestVideoFromAPI(t *testing.T) {
	item := &youtube.Video{
		Id: "abc",
		Statistics: &youtube.VideoStatistics{
			ViewCount:    1000,
			LikeCount:    100,
			CommentCount: 50,
		},
		ContentDetails: &youtube.VideoContentDetails{
			Duration: "PT10M30S",
		},
	}
	snippet := &youtube.PlaylistItemSnippet{
		Title:       "测试视频",
		Description: "描述",
		PublishedAt: "2023-01-02T03:04:05Z",
	}

	s := videoFromAPI(item, snippet)
	assert.Equal(t, "abc", s.VideoID)
	assert.Equal(t, "测试视频", s.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", s.URL)
	assert.Equal(t, uint64(1000), s.Views)
	assert.Equal(t, uint64(100), s.Likes)
	assert.Equal(t, uint64(50), s.Comments)
	assert.Equal(t, "PT10M30S", s.Duration)
	assert.Equal(t, 2023, s.UploadDate.Year())
}

func TestVideoFromAPIMissingParts(t *testing.T) {
	// 统计字段缺失时保持0，snippet缺失时标题为N/A
	s := videoFromAPI(&youtube.Video{Id: "abc"}, nil)
	assert.Equal(t, "abc", s.VideoID)
	assert.Equal(t, "N/A", s.Title)
	assert.Equal(t, uint64(0), s.Views)
	assert.Equal(t, uint64(0), s.Likes)
	assert.True(t, s.UploadDate.IsZero())
}

func TestVideoFromAPIDescriptionLimit(t *testing.T) {
	snippet := &youtube.PlaylistItemSnippet{
		Title:       "t",
		Description: strings.Repeat("a", descriptionLimit*2),
	}
	s := videoFromAPI(&youtube.Video{Id: "abc"}, snippet)
	assert.Equal(t, descriptionLimit, len(s.Description))
}

func TestNewFetcherValidation(t *testing.T) {
	_, err := NewFetcher(&FetcherConfig{ChannelID: "c"})
	assert.Error(t, err)
	_, err = NewFetcher(&FetcherConfig{ApiKey: "k"})
	assert.Error(t, err)
}
