package server

import (
	"context"
	"time"
)

// 用于周期性从YouTube Data API刷新统计数据并保存到数据库的goroutine主函数
func (s *serverImpl) refresher(ctx context.Context) {
	s.logger.Println("统计数据刷新线程启动")
	tickCh := time.Tick(s.config.RefreshInterval)
	for {
		select {
		case <-tickCh:
			err := s.refresh(ctx)
			if err != nil {
				// 拉取失败仅记录日志，等待下一个周期，不做重试
				s.logger.Printf("刷新统计数据失败：%v\n", err)
			}
		case <-ctx.Done():
			s.logger.Println("统计数据刷新线程结束")
			return
		}
	}
}

func (s *serverImpl) refresh(ctx context.Context) error {
	s.logger.Println("正在从YouTube Data API获取统计数据")
	stats, _, err := s.fetch.FetchAllVideos(ctx)
	if err != nil {
		return err
	}
	s.logger.Printf("获取了%d条视频统计数据\n", len(stats))

	timestamp := uint64(time.Now().Unix())
	err = s.dao.SaveAllVideoStats(stats, timestamp)
	if err != nil {
		return err
	}

	err = s.dao.RemoveVideoStatsBefore(timestamp - uint64(s.config.StatsDuration.Seconds()))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastRefreshed = time.Now()
	s.mu.Unlock()

	return nil
}
