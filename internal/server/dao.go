package server

import (
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/packagewjx/channel-analytics/pkg/server"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log"
	"os"
)

type UpdateDao interface {
	// SaveVideo 保存或更新视频的基本信息
	SaveVideo(v *core.VideoStats) error
	// SaveAllVideoStats 保存一批视频在timestamp时刻的统计快照
	SaveAllVideoStats(arr []*core.VideoStats, timestamp uint64) error
	SaveVideoInsight(ins *Insight) error
	SaveClusterCentroid(c *core.ClusterCentroid) error

	// 永久删除timestamp之前的统计快照
	RemoveVideoStatsBefore(timestamp uint64) error
	// 删除所有存在的聚类中心
	RemoveAllClusterCentroids() error
}

type QueryDao interface {
	// QueryLatestVideoStats 查询每个视频最近一次的统计快照
	QueryLatestVideoStats() ([]*core.VideoStats, error)
	QueryInsightByVideoId(videoId string) (*server.VideoInsight, error)
	QueryAllInsights() (map[string]*Insight, error)
	QueryAllClusterCentroids() ([]*core.ClusterCentroid, error)
}

type Dao interface {
	DB() *gorm.DB
	UpdateDao
	QueryDao
}

type daoImpl struct {
	db         *gorm.DB
	videoIdMap map[string]uint
	logger     *log.Logger
}

var _ Dao = &daoImpl{}

func NewDao(host string) (Dao, error) {
	databaseURL := fmt.Sprintf("root:wujunxian@tcp(%s)/channel_analytics?charset=utf8mb4&parseTime=True&loc=Local",
		host)
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	// 创建表格等
	err = db.AutoMigrate(&VideoDO{}, &VideoStatsDO{}, &VideoInsightDO{}, &ClusterCentroidDO{})
	if err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &daoImpl{
		db:         db,
		videoIdMap: make(map[string]uint),
		logger:     log.New(os.Stdout, "Dao: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
	}, nil
}

func (d *daoImpl) SaveVideo(v *core.VideoStats) error {
	_, err := d.queryVideoId(v, true)
	return err
}

func (d *daoImpl) SaveAllVideoStats(arr []*core.VideoStats, timestamp uint64) error {
	const MaxOneRun = 5000

	newDo := make([]*VideoStatsDO, 0, len(arr))
	oldDo := make([]*VideoStatsDO, 0, len(arr))
	for _, v := range arr {
		id, err := d.queryVideoId(v, true)
		if err != nil {
			return err
		}

		do := &VideoStatsDO{}
		err = d.db.First(do, &VideoStatsDO{
			VideoId:   id,
			Timestamp: timestamp,
		}).Error

		do.Views = v.Views
		do.Likes = v.Likes
		do.Dislikes = v.Dislikes
		do.Comments = v.Comments
		if err == nil {
			oldDo = append(oldDo, do)
		} else if err == gorm.ErrRecordNotFound {
			do.VideoId = id
			do.Timestamp = timestamp
			newDo = append(newDo, do)
		} else {
			return errors.Wrap(err, fmt.Sprintf("查询VideoStats出错，视频为%s，时间戳%d", v.VideoID, timestamp))
		}
	}

	d.logger.Printf("插入%d条新的VideoStats到数据库", len(newDo))

	for i := 0; i < len(newDo); i += MaxOneRun {
		end := i + MaxOneRun
		if end > len(newDo) {
			end = len(newDo)
		}
		err := d.db.Create(newDo[i:end]).Error
		if err != nil {
			return err
		}
	}

	d.logger.Printf("更新数据库%d条VideoStats", len(oldDo))
	for _, do := range oldDo {
		err := d.db.Updates(do).Error
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("更新VideoStats出错，记录ID为%d", do.ID))
		}
	}

	return nil
}

func (d *daoImpl) SaveVideoInsight(ins *Insight) error {
	id, ok := d.videoIdMap[ins.VideoID]
	if !ok {
		video := &VideoDO{}
		err := d.db.First(video, &VideoDO{VideoID: ins.VideoID}).Error
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("查询视频%s的ID时出错", ins.VideoID))
		}
		id = video.ID
		d.videoIdMap[ins.VideoID] = id
	}

	dest := &VideoInsightDO{}
	d.db.First(dest, &VideoInsightDO{
		VideoId: id,
	})

	dest.VideoId = id
	dest.ClusterId = ins.Cluster
	dest.Performance = ins.Performance

	err := d.db.Save(dest).Error
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("保存视频%s的VideoInsightDO出错", ins.VideoID))
	}

	return nil
}

func (d *daoImpl) SaveClusterCentroid(c *core.ClusterCentroid) error {
	dest := &ClusterCentroidDO{}
	d.db.Unscoped().First(dest, &ClusterCentroidDO{ClusterId: c.ClusterId})

	dest.ClusterId = c.ClusterId
	dest.FeatureData = c.FeatureData
	dest.DeletedAt = gorm.DeletedAt{}

	d.logger.Printf("正在保存ClusterId为%d的中心数据", c.ClusterId)

	return d.db.Save(dest).Error
}

func (d *daoImpl) RemoveVideoStatsBefore(timestamp uint64) error {
	return d.db.Model(&VideoStatsDO{}).Unscoped().Where("timestamp < ?", timestamp).Delete(&VideoStatsDO{}).Error
}

func (d *daoImpl) RemoveAllClusterCentroids() error {
	return d.db.Model(&ClusterCentroidDO{}).Where("1 = 1").Delete(&ClusterCentroidDO{}).Error
}

func (d *daoImpl) QueryLatestVideoStats() ([]*core.VideoStats, error) {
	videos := make([]*VideoDO, 0)
	err := d.db.Find(&videos).Error
	if err != nil {
		return nil, errors.Wrap(err, "读取视频记录时出错")
	}

	result := make([]*core.VideoStats, 0, len(videos))
	for _, video := range videos {
		do := &VideoStatsDO{}
		err := d.db.Where(&VideoStatsDO{VideoId: video.ID}).Order("timestamp desc").First(do).Error
		if err == gorm.ErrRecordNotFound {
			// 还没有统计快照的视频不返回
			continue
		} else if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("查询视频%s的统计快照出错", video.VideoID))
		}

		result = append(result, &core.VideoStats{
			VideoID:     video.VideoID,
			Title:       video.Title,
			UploadDate:  video.UploadDate,
			Description: video.Description,
			Duration:    video.Duration,
			Views:       do.Views,
			Likes:       do.Likes,
			Dislikes:    do.Dislikes,
			Comments:    do.Comments,
			URL:         video.URL,
		})
	}

	return result, nil
}

func (d *daoImpl) QueryInsightByVideoId(videoId string) (*server.VideoInsight, error) {
	video := &VideoDO{}
	err := d.db.First(video, &VideoDO{VideoID: videoId}).Error
	if err == gorm.ErrRecordNotFound {
		return nil, server.ErrVideoNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "查询视频记录时出错")
	}

	insight := &VideoInsightDO{}
	err = d.db.First(insight, &VideoInsightDO{VideoId: video.ID}).Error
	if err == gorm.ErrRecordNotFound {
		return nil, server.ErrNotAnalyzed
	} else if err != nil {
		return nil, errors.Wrap(err, "查询VideoInsight时出错")
	}

	stats := &VideoStatsDO{}
	err = d.db.Where(&VideoStatsDO{VideoId: video.ID}).Order("timestamp desc").First(stats).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(err, "查询统计快照时出错")
	}

	return &server.VideoInsight{
		VideoID:     video.VideoID,
		Title:       video.Title,
		UploadDate:  video.UploadDate,
		Views:       stats.Views,
		Likes:       stats.Likes,
		Comments:    stats.Comments,
		Cluster:     insight.ClusterId,
		Performance: insight.Performance,
	}, nil
}

func (d *daoImpl) QueryAllInsights() (map[string]*Insight, error) {
	doArray := make([]*VideoInsightDO, 0)
	err := d.db.Find(&doArray).Error
	if err != nil {
		return nil, errors.Wrap(err, "获取所有分析结果出错")
	}

	idMap := make(map[uint]string)
	videos := make([]*VideoDO, 0)
	err = d.db.Find(&videos).Error
	if err != nil {
		return nil, errors.Wrap(err, "读取视频记录时出错")
	}
	for _, video := range videos {
		idMap[video.ID] = video.VideoID
	}

	result := make(map[string]*Insight, len(doArray))
	for _, do := range doArray {
		videoId, ok := idMap[do.VideoId]
		if !ok {
			continue
		}
		result[videoId] = &Insight{
			VideoID:     videoId,
			Cluster:     do.ClusterId,
			Performance: do.Performance,
		}
	}

	return result, nil
}

func (d *daoImpl) QueryAllClusterCentroids() ([]*core.ClusterCentroid, error) {
	doArray := make([]*ClusterCentroidDO, 0)
	err := d.db.Order("cluster_id asc").Find(&doArray).Error
	if err != nil {
		return nil, errors.Wrap(err, "获取所有中心数据出错")
	}

	result := make([]*core.ClusterCentroid, len(doArray))
	for i, do := range doArray {
		result[i] = &core.ClusterCentroid{
			ClusterId:   do.ClusterId,
			FeatureData: do.FeatureData,
		}
	}
	return result, nil
}

// 根据VideoID查询数据库记录ID，若不存在，则创建一条记录。
func (d *daoImpl) queryVideoId(v *core.VideoStats, createIfNil bool) (uint, error) {
	id, ok := d.videoIdMap[v.VideoID]
	if ok {
		return id, nil
	}

	video := &VideoDO{}
	err := d.db.First(video, &VideoDO{VideoID: v.VideoID}).Error
	if err == gorm.ErrRecordNotFound {
		if !createIfNil {
			d.logger.Printf("数据库中不存在视频%s的记录\n", v.VideoID)
			return 0, server.ErrVideoNotFound
		}
		d.logger.Printf("数据库中不存在视频%s的记录，将创建\n", v.VideoID)
		video.VideoID = v.VideoID
		video.Title = v.Title
		video.UploadDate = v.UploadDate
		video.Description = v.Description
		video.Duration = v.Duration
		video.URL = v.URL
		err = d.db.Create(video).Error
	}

	if err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("从数据库中查询或创建视频记录出错。视频为%s", v.VideoID))
	}

	d.videoIdMap[v.VideoID] = video.ID

	return video.ID, nil
}

func (d *daoImpl) DB() *gorm.DB {
	return d.db
}
