package dataset

import (
	"encoding/csv"
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"io"
	"strconv"
	"time"
)

var statsHeader = []string{
	ColVideoID, ColTitle, ColUploadDate, ColDescription, ColDuration,
	ColViews, ColLikes, ColDislikes, ColComments, ColURL,
}

const (
	ColCluster     = "Cluster"
	ColPerformance = "Performance"
)

// WriteVideoStats 输出视频统计数据到CSV，列顺序与拉取脚本的导出格式一致
func WriteVideoStats(out io.Writer, stats []*core.VideoStats) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(statsHeader); err != nil {
		return errors.Wrap(err, "写入表头错误")
	}
	for _, s := range stats {
		if err := writer.Write(statsRecord(s)); err != nil {
			return errors.Wrap(err, "写入数据错误")
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAnalyzedStats 输出带Cluster与Performance两列的分析结果CSV。
// class与performance的长度必须与stats一致。
func WriteAnalyzedStats(out io.Writer, stats []*core.VideoStats, class []int, performance []string) error {
	if len(class) != len(stats) || len(performance) != len(stats) {
		return errors.Wrap(core.ErrInvalidInput,
			fmt.Sprintf("标签数量与记录数量不一致：记录%d，类别%d，性能%d", len(stats), len(class), len(performance)))
	}

	writer := csv.NewWriter(out)
	header := append(append([]string{}, statsHeader...), ColCluster, ColPerformance)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "写入表头错误")
	}
	for i, s := range stats {
		record := append(statsRecord(s), strconv.Itoa(class[i]), performance[i])
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "写入数据错误")
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCentroids 输出各类中心到CSV，每行为一个类别的(Views, Likes, Comments)中心
func WriteCentroids(out io.Writer, centroids []*core.ClusterCentroid, precision int) error {
	writer := csv.NewWriter(out)
	for _, c := range centroids {
		record := []string{
			strconv.FormatFloat(float64(c.Views), 'f', precision, 32),
			strconv.FormatFloat(float64(c.Likes), 'f', precision, 32),
			strconv.FormatFloat(float64(c.Comments), 'f', precision, 32),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "写入数据错误")
		}
	}
	writer.Flush()
	return writer.Error()
}

func statsRecord(s *core.VideoStats) []string {
	return []string{
		s.VideoID,
		s.Title,
		s.UploadDate.Format(time.RFC3339),
		s.Description,
		s.Duration,
		strconv.FormatUint(s.Views, 10),
		strconv.FormatUint(s.Likes, 10),
		strconv.FormatUint(s.Dislikes, 10),
		strconv.FormatUint(s.Comments, 10),
		s.URL,
	}
}
