package fetcher

import (
	"context"
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	// 每页最多获取的playlistItems数量，API上限为50
	pageSize = 50
	// 描述仅保留前500个字符
	descriptionLimit = 500
)

const (
	MainCsvName     = "youtube_channel_data.csv"
	MetadataName    = "fetch_metadata.json"
	backupTimestamp = "20060102_150405"
)

type FetcherConfig struct {
	ApiKey    string
	ChannelID string
	OutputDir string
	MaxVideos int // 最多获取的视频数量，0表示全部
}

// ChannelInfo 频道的基本信息与汇总统计
type ChannelInfo struct {
	ChannelID       string `json:"channel_id"`
	ChannelName     string `json:"channel_name"`
	SubscriberCount uint64 `json:"subscriber_count"`
	VideoCount      uint64 `json:"video_count"`
	ViewCount       uint64 `json:"view_count"`
	UploadsPlaylist string `json:"uploads_playlist"`
}

type FetchResult struct {
	ChannelInfo *ChannelInfo
	Videos      []*core.VideoStats
	MainCsvPath string
	BackupPath  string
}

type Fetcher interface {
	// ChannelInfo 获取频道基本信息与uploads播放列表ID
	ChannelInfo(ctx context.Context) (*ChannelInfo, error)
	// FetchAllVideos 分页获取频道所有视频的统计数据
	FetchAllVideos(ctx context.Context) ([]*core.VideoStats, *ChannelInfo, error)
	// Run 获取全部数据并输出CSV、备份CSV与元数据文件
	Run(ctx context.Context) (*FetchResult, error)
}

func NewFetcher(config *FetcherConfig) (Fetcher, error) {
	if config.ApiKey == "" {
		return nil, errors.Wrap(core.ErrInvalidInput, "ApiKey不能为空")
	}
	if config.ChannelID == "" {
		return nil, errors.Wrap(core.ErrInvalidInput, "ChannelID不能为空")
	}
	if config.OutputDir == "" {
		config.OutputDir = "data"
	}

	service, err := youtube.NewService(context.Background(), option.WithAPIKey(config.ApiKey))
	if err != nil {
		return nil, errors.Wrap(err, "创建YouTube客户端失败")
	}

	return &fetcherImpl{
		config:  config,
		service: service,
		logger:  log.New(os.Stdout, "fetcher: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
	}, nil
}

type fetcherImpl struct {
	config  *FetcherConfig
	service *youtube.Service
	logger  *log.Logger
}

func (f *fetcherImpl) ChannelInfo(ctx context.Context) (*ChannelInfo, error) {
	response, err := f.service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(f.config.ChannelID).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "请求频道信息出错")
	}
	if len(response.Items) == 0 {
		return nil, errors.Wrap(core.ErrInvalidInput, fmt.Sprintf("频道%s不存在", f.config.ChannelID))
	}

	item := response.Items[0]
	info := &ChannelInfo{
		ChannelID:       f.config.ChannelID,
		ChannelName:     item.Snippet.Title,
		SubscriberCount: item.Statistics.SubscriberCount,
		VideoCount:      item.Statistics.VideoCount,
		ViewCount:       item.Statistics.ViewCount,
		UploadsPlaylist: item.ContentDetails.RelatedPlaylists.Uploads,
	}

	f.logger.Printf("频道：%s，视频数：%d，订阅数：%d\n", info.ChannelName, info.VideoCount, info.SubscriberCount)

	return info, nil
}

func (f *fetcherImpl) FetchAllVideos(ctx context.Context) ([]*core.VideoStats, *ChannelInfo, error) {
	info, err := f.ChannelInfo(ctx)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Printf("开始从播放列表%s获取视频\n", info.UploadsPlaylist)

	videos := make([]*core.VideoStats, 0, pageSize)
	pageToken := ""
	for {
		pl, err := f.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(info.UploadsPlaylist).MaxResults(pageSize).PageToken(pageToken).
			Context(ctx).Do()
		if err != nil {
			return nil, nil, errors.Wrap(err, "请求playlistItems出错")
		}
		if len(pl.Items) == 0 {
			break
		}

		ids := make([]string, 0, len(pl.Items))
		snippets := make(map[string]*youtube.PlaylistItemSnippet)
		for _, item := range pl.Items {
			ids = append(ids, item.Snippet.ResourceId.VideoId)
			snippets[item.Snippet.ResourceId.VideoId] = item.Snippet
		}

		stats, err := f.service.Videos.List([]string{"statistics", "contentDetails"}).
			Id(strings.Join(ids, ",")).Context(ctx).Do()
		if err != nil {
			return nil, nil, errors.Wrap(err, "请求视频统计数据出错")
		}

		for _, item := range stats.Items {
			videos = append(videos, videoFromAPI(item, snippets[item.Id]))
			if f.config.MaxVideos > 0 && len(videos) >= f.config.MaxVideos {
				f.logger.Printf("达到视频数量上限%d\n", f.config.MaxVideos)
				return videos, info, nil
			}
		}

		f.logger.Printf("已处理%d条视频\n", len(videos))

		pageToken = pl.NextPageToken
		if pageToken == "" {
			break
		}
	}

	f.logger.Printf("共获取%d条视频\n", len(videos))

	return videos, info, nil
}

func (f *fetcherImpl) Run(ctx context.Context) (*FetchResult, error) {
	videos, info, err := f.FetchAllVideos(ctx)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, errors.Wrap(core.ErrInvalidInput, "没有获取到任何视频")
	}

	// 按上传日期降序输出，与原始导出格式一致
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].UploadDate.After(videos[j].UploadDate)
	})

	if err := os.MkdirAll(f.config.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "创建输出目录失败")
	}

	result := &FetchResult{
		ChannelInfo: info,
		Videos:      videos,
		MainCsvPath: fmt.Sprintf("%s/%s", f.config.OutputDir, MainCsvName),
		BackupPath: fmt.Sprintf("%s/youtube_backup_%s.csv",
			f.config.OutputDir, time.Now().Format(backupTimestamp)),
	}

	for _, path := range []string{result.MainCsvPath, result.BackupPath} {
		if err := writeCsvFile(path, videos); err != nil {
			return nil, err
		}
	}

	metadata := BuildMetadata(info, videos, result.MainCsvPath, result.BackupPath)
	metadataPath := fmt.Sprintf("%s/%s", f.config.OutputDir, MetadataName)
	if err := writeMetadataFile(metadataPath, metadata); err != nil {
		return nil, err
	}

	f.logger.Printf("数据已保存到%s，备份为%s\n", result.MainCsvPath, result.BackupPath)

	return result, nil
}

// 统计字段在API响应中缺失时保持0，与加载CSV时缺失值按0处理的规则一致
func videoFromAPI(item *youtube.Video, snippet *youtube.PlaylistItemSnippet) *core.VideoStats {
	s := &core.VideoStats{
		VideoID: item.Id,
		Title:   "N/A",
		URL:     "https://www.youtube.com/watch?v=" + item.Id,
	}

	if item.Statistics != nil {
		s.Views = item.Statistics.ViewCount
		s.Likes = item.Statistics.LikeCount
		s.Dislikes = item.Statistics.DislikeCount
		s.Comments = item.Statistics.CommentCount
	}
	if item.ContentDetails != nil {
		s.Duration = item.ContentDetails.Duration
	}

	if snippet != nil {
		s.Title = snippet.Title
		s.Description = snippet.Description
		if len(s.Description) > descriptionLimit {
			s.Description = s.Description[:descriptionLimit]
		}
		if t, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
			s.UploadDate = t
		}
	}

	return s
}
