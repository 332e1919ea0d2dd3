package server

import (
	"encoding/json"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/packagewjx/channel-analytics/pkg/server"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// 内存实现的Dao，测试时代替MySQL
type fakeDao struct {
	stats     []*core.VideoStats
	insights  map[string]*Insight
	centroids []*core.ClusterCentroid

	removedBefore    uint64
	centroidsRemoved bool
}

var _ Dao = &fakeDao{}

func (f *fakeDao) DB() *gorm.DB { return nil }

func (f *fakeDao) SaveVideo(v *core.VideoStats) error { return nil }

func (f *fakeDao) SaveAllVideoStats(arr []*core.VideoStats, timestamp uint64) error {
	f.stats = arr
	return nil
}

func (f *fakeDao) SaveVideoInsight(ins *Insight) error {
	if f.insights == nil {
		f.insights = make(map[string]*Insight)
	}
	f.insights[ins.VideoID] = ins
	return nil
}

func (f *fakeDao) SaveClusterCentroid(c *core.ClusterCentroid) error {
	f.centroids = append(f.centroids, c)
	return nil
}

func (f *fakeDao) RemoveVideoStatsBefore(timestamp uint64) error {
	f.removedBefore = timestamp
	return nil
}

func (f *fakeDao) RemoveAllClusterCentroids() error {
	f.centroidsRemoved = true
	f.centroids = nil
	return nil
}

func (f *fakeDao) QueryLatestVideoStats() ([]*core.VideoStats, error) {
	return f.stats, nil
}

func (f *fakeDao) QueryInsightByVideoId(videoId string) (*server.VideoInsight, error) {
	var stats *core.VideoStats
	for _, v := range f.stats {
		if v.VideoID == videoId {
			stats = v
			break
		}
	}
	if stats == nil {
		return nil, server.ErrVideoNotFound
	}
	ins, ok := f.insights[videoId]
	if !ok {
		return nil, server.ErrNotAnalyzed
	}
	return &server.VideoInsight{
		VideoID:     stats.VideoID,
		Title:       stats.Title,
		UploadDate:  stats.UploadDate,
		Views:       stats.Views,
		Likes:       stats.Likes,
		Comments:    stats.Comments,
		Cluster:     ins.Cluster,
		Performance: ins.Performance,
	}, nil
}

func (f *fakeDao) QueryAllInsights() (map[string]*Insight, error) {
	if f.insights == nil {
		return map[string]*Insight{}, nil
	}
	return f.insights, nil
}

func (f *fakeDao) QueryAllClusterCentroids() ([]*core.ClusterCentroid, error) {
	return f.centroids, nil
}

func newTestServer(dao Dao) *serverImpl {
	return &serverImpl{
		config: &ServerConfig{
			Port:      DefaultPort,
			ChannelID: "test-channel",
			NumClass:  2,
			NumRound:  DefaultNumRound,
			Seed:      DefaultSeed,
		},
		dao:              dao,
		logger:           log.New(os.Stdout, "test server: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
		executeReAnalyze: make(chan struct{}, 1),
	}
}

func serverTestDao() *fakeDao {
	return &fakeDao{
		stats: []*core.VideoStats{
			{VideoID: "a", Title: "视频A", UploadDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Views: 10, Likes: 1},
			{VideoID: "b", Title: "视频B", UploadDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Views: 1000, Likes: 100, Comments: 50},
			{VideoID: "c", Title: "视频C", UploadDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Views: 20, Likes: 2, Comments: 1},
		},
		insights: map[string]*Insight{
			"a": {VideoID: "a", Cluster: 0, Performance: core.PerformanceLow},
			"b": {VideoID: "b", Cluster: 1, Performance: core.PerformanceHigh},
		},
	}
}

func TestQueryVideoInsight(t *testing.T) {
	s := newTestServer(serverTestDao())

	insight, err := s.QueryVideoInsight("b")
	assert.NoError(t, err)
	assert.Equal(t, "视频B", insight.Title)
	assert.Equal(t, 1, insight.Cluster)
	assert.Equal(t, core.PerformanceHigh, insight.Performance)

	_, err = s.QueryVideoInsight("nonexistent")
	assert.Equal(t, server.ErrVideoNotFound, err)

	_, err = s.QueryVideoInsight("c")
	assert.Equal(t, server.ErrNotAnalyzed, err)
}

func TestQueryDashboardSummary(t *testing.T) {
	s := newTestServer(serverTestDao())

	summary, err := s.QueryDashboardSummary()
	assert.NoError(t, err)
	assert.Equal(t, "test-channel", summary.ChannelID)
	assert.Equal(t, 3, summary.TotalVideos)
	assert.Equal(t, uint64(1030), summary.TotalViews)
	assert.Equal(t, uint64(103), summary.TotalLikes)
	assert.InDelta(t, 343.33, summary.AvgViews, 0.01)
}

func TestQueryViewsOverTime(t *testing.T) {
	s := newTestServer(serverTestDao())

	points, err := s.QueryViewsOverTime()
	assert.NoError(t, err)
	assert.Equal(t, 3, len(points))
	// 按上传日期升序
	assert.Equal(t, "视频B", points[0].Title)
	assert.Equal(t, "视频C", points[1].Title)
	assert.Equal(t, "视频A", points[2].Title)
}

func TestQueryTopVideos(t *testing.T) {
	s := newTestServer(serverTestDao())

	top, err := s.QueryTopVideos(2)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(top))
	assert.Equal(t, "b", top[0].VideoID)
	assert.Equal(t, "c", top[1].VideoID)

	// n超过视频数量时返回全部
	top, err = s.QueryTopVideos(100)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(top))
}

func TestQueryEngagement(t *testing.T) {
	s := newTestServer(serverTestDao())

	summary, err := s.QueryEngagement()
	assert.NoError(t, err)
	// 总和覆盖所有视频，包括没有分析结果的c
	assert.Equal(t, uint64(103), summary.TotalLikes)
	assert.Equal(t, uint64(51), summary.TotalComments)

	// 按类别的平均值仅覆盖已分析的a与b
	assert.Equal(t, 2, len(summary.Clusters))
	assert.Equal(t, 0, summary.Clusters[0].ClusterId)
	assert.Equal(t, 1, summary.Clusters[0].Count)
	assert.Equal(t, float64(10), summary.Clusters[0].ViewsAvg)
	assert.Equal(t, float64(1000), summary.Clusters[1].ViewsAvg)
}

func TestQueryClusterPoints(t *testing.T) {
	s := newTestServer(serverTestDao())

	points, err := s.QueryClusterPoints()
	assert.NoError(t, err)
	// 没有分析结果的c不包含在内
	assert.Equal(t, 2, len(points))
	for _, p := range points {
		assert.NotEqual(t, "c", p.VideoID)
	}
}

func TestQueryPerformanceReport(t *testing.T) {
	s := newTestServer(serverTestDao())

	report, err := s.QueryPerformanceReport()
	assert.NoError(t, err)
	assert.InDelta(t, 343.33, report.Threshold, 0.01)
	assert.Equal(t, 2, len(report.Rows))
}

func TestReAnalyzeUpdatesDao(t *testing.T) {
	dao := serverTestDao()
	s := newTestServer(dao)

	err := s.reAnalyze()
	assert.NoError(t, err)

	assert.True(t, dao.centroidsRemoved)
	assert.Equal(t, 2, len(dao.centroids))
	assert.Equal(t, 3, len(dao.insights))
	for _, v := range dao.stats {
		ins, ok := dao.insights[v.VideoID]
		assert.True(t, ok)
		assert.Condition(t, func() (success bool) {
			return ins.Cluster >= 0 && ins.Cluster < 2
		})
		assert.Contains(t, []string{core.PerformanceHigh, core.PerformanceLow}, ins.Performance)
	}

	s.mu.RLock()
	assert.False(t, s.lastAnalyzed.IsZero())
	s.mu.RUnlock()
}

func TestReAnalyzeEmptyDatabase(t *testing.T) {
	dao := &fakeDao{}
	s := newTestServer(dao)

	// 没有统计数据时跳过，不报错也不写入
	err := s.reAnalyze()
	assert.NoError(t, err)
	assert.False(t, dao.centroidsRemoved)
	assert.Equal(t, 0, len(dao.insights))
}

func TestHttpEndpoints(t *testing.T) {
	s := newTestServer(serverTestDao())
	handler := s.buildServer().Handler

	get := func(path string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		return recorder
	}

	response := get("/videos/b/insight")
	assert.Equal(t, http.StatusOK, response.Code)
	insight := &server.VideoInsight{}
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), insight))
	assert.Equal(t, "b", insight.VideoID)
	assert.Equal(t, 1, insight.Cluster)

	assert.Equal(t, http.StatusNotFound, get("/videos/nonexistent/insight").Code)
	assert.Equal(t, http.StatusNotFound, get("/videos/c/insight").Code)
	assert.Equal(t, http.StatusNotFound, get("/videos/b/other").Code)

	response = get("/dashboard/summary")
	assert.Equal(t, http.StatusOK, response.Code)
	summary := &server.DashboardSummary{}
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), summary))
	assert.Equal(t, 3, summary.TotalVideos)

	response = get("/dashboard/top-videos?n=1")
	assert.Equal(t, http.StatusOK, response.Code)
	top := make([]*server.TopVideo, 0)
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &top))
	assert.Equal(t, 1, len(top))
	assert.Equal(t, "b", top[0].VideoID)

	assert.Equal(t, http.StatusBadRequest, get("/dashboard/top-videos?n=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get("/dashboard/top-videos?n=0").Code)

	assert.Equal(t, http.StatusOK, get("/dashboard/views-over-time").Code)
	assert.Equal(t, http.StatusOK, get("/dashboard/engagement").Code)
	assert.Equal(t, http.StatusOK, get("/dashboard/clusters").Code)
	assert.Equal(t, http.StatusOK, get("/dashboard/performance").Code)
	assert.Equal(t, http.StatusOK, get("/healthz").Code)

	response = get("/reanalyze")
	assert.Equal(t, http.StatusOK, response.Code)
	select {
	case <-s.executeReAnalyze:
	default:
		assert.Fail(t, "reanalyze请求没有触发再分析")
	}
}
