package server

import (
	"context"
	"fmt"
	"github.com/packagewjx/channel-analytics/internal/analysis"
	"github.com/packagewjx/channel-analytics/internal/dataset"
	"github.com/pkg/errors"
	"os"
	"time"
)

func (s *serverImpl) reAnalyzer(ctx context.Context) {
	s.logger.Println("再分析线程启动")

	if s.config.InitialDataCsvFile != "" {
		s.logger.Println("正在读取初始数据集")
		f, err := os.Open(s.config.InitialDataCsvFile)
		if err != nil {
			panic(fmt.Sprintf("打开文件%s失败", s.config.InitialDataCsvFile))
		}
		stats, err := dataset.NewDataLoader(dataset.CSV).Load(f)
		_ = f.Close()
		if err != nil {
			panic(fmt.Sprintf("读取文件%s失败：%v", s.config.InitialDataCsvFile, err))
		}

		s.logger.Printf("正在写入%d条初始统计数据\n", len(stats))
		err = s.dao.SaveAllVideoStats(stats, uint64(time.Now().Unix()))
		if err != nil {
			panic(fmt.Sprintf("写入初始统计数据失败：%v", err))
		}
	}

	// 将next设置为下一天的执行时间
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, int(s.config.ReAnalyzeTime.Hours()), 0, 0, 0, now.Location())
	waitTime := next.Sub(now)

	for {
		next = time.Now().Add(waitTime)
		s.logger.Printf("分析将于%s执行\n", next.Format("2006-01-02T15:04:05-0700"))
		select {
		case <-ctx.Done():
			s.logger.Println("再分析线程退出")
			return
		case <-time.After(waitTime):
			waitTime = time.Hour * 24
			err := s.reAnalyze()
			if err != nil {
				panic(errors.Wrap(err, "再分析出错"))
			}
		case <-s.executeReAnalyze:
			err := s.reAnalyze()
			if err != nil {
				panic(errors.Wrap(err, "再分析出错"))
			}
		}
	}
}

func (s *serverImpl) reAnalyze() error {
	s.logger.Println("再分析开始")

	s.logger.Println("正在获取所有视频的最新统计数据")
	stats, err := s.dao.QueryLatestVideoStats()
	if err != nil {
		return errors.Wrap(err, "读取数据库统计快照出错")
	}
	if len(stats) == 0 {
		s.logger.Println("数据库中没有统计数据，跳过本次分析")
		return nil
	}

	numClass := int(s.config.NumClass)
	if numClass > len(stats) {
		// 类别数量不能超过记录数量
		numClass = len(stats)
	}

	s.logger.Println("开始执行分析流水线")
	result, err := analysis.Analyze(stats, numClass, &analysis.KMeansContext{
		Round: int(s.config.NumRound),
		Seed:  s.config.Seed,
	})
	if err != nil {
		return errors.Wrap(err, "执行分析流水线出错")
	}
	s.logger.Println("分析流水线执行完成")

	s.logger.Println("正在保存中心数据")
	err = s.dao.RemoveAllClusterCentroids()
	if err != nil {
		return errors.Wrap(err, "删除旧的中心数据出错")
	}
	for _, centroid := range result.Centroids {
		err := s.dao.SaveClusterCentroid(centroid)
		if err != nil {
			return errors.Wrap(err, "保存中心数据时出现错误")
		}
	}

	s.logger.Println("保存新的视频分析结果")
	for i, v := range stats {
		ins := &Insight{
			VideoID:     v.VideoID,
			Cluster:     result.Class[i],
			Performance: result.Performance[i],
		}
		err := s.dao.SaveVideoInsight(ins)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("保存视频%s的分析结果出现问题", v.VideoID))
		}
	}

	s.mu.Lock()
	s.lastAnalyzed = time.Now()
	s.mu.Unlock()

	s.logger.Println("再分析结束")
	return nil
}
