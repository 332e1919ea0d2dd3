package server

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/packagewjx/channel-analytics/internal/fetcher"
	"github.com/packagewjx/channel-analytics/pkg/server"
	"github.com/pkg/errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"sync"
	"syscall"
	"time"
)

const (
	DefaultPort            = 2000
	DefaultRefreshInterval = time.Hour
	DefaultStatsDuration   = 30 * 24 * time.Hour
	DefaultReAnalyzeTime   = 1 * time.Hour
	DefaultNumRound        = 30
	DefaultNumClass        = 3
	DefaultSeed            = 42
	DefaultTopVideos       = 30
)

const minStatsDuration = 24 * time.Hour
const minRefreshInterval = 15 * time.Minute

type ServerConfig struct {
	StatsDuration      time.Duration // 每个视频保留的统计快照的时间长度
	Port               uint16        // 本服务器监听端口
	RefreshInterval    time.Duration // 从YouTube Data API刷新统计数据的周期。至少为15分钟。
	ReAnalyzeTime      time.Duration // 每天定时执行分析的时间
	NumClass           uint          // 聚类类别数量
	NumRound           uint          // 聚类迭代轮次
	Seed               int64         // 聚类随机种子，固定以保证结果可复现
	InitialDataCsvFile string        // 初始数据集文件。若不是空，则启动时读取并写入数据库作为统计快照。
	MysqlHost          string
	ApiKey             string // YouTube Data API密钥。为空时不启动统计刷新线程。
	ChannelID          string
}

func (s ServerConfig) String() string {
	marshal, _ := json.Marshal(s)
	return string(marshal)
}

type Server interface {
	Start() error
}

func NewServer(config *ServerConfig) (Server, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}

	dao, err := NewDao(config.MysqlHost)
	if err != nil {
		return nil, err
	}

	s := &serverImpl{
		config:           config,
		dao:              dao,
		logger:           log.New(os.Stdout, "analytics server: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
		executeReAnalyze: make(chan struct{}),
	}

	if config.ApiKey != "" {
		s.fetch, err = fetcher.NewFetcher(&fetcher.FetcherConfig{
			ApiKey:    config.ApiKey,
			ChannelID: config.ChannelID,
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

type serverImpl struct {
	config           *ServerConfig
	dao              Dao
	fetch            fetcher.Fetcher
	logger           *log.Logger
	executeReAnalyze chan struct{}

	mu            sync.RWMutex
	lastRefreshed time.Time
	lastAnalyzed  time.Time
}

func (config *ServerConfig) Complete() error {
	if config.Port < 1024 {
		return fmt.Errorf("端口号应该在1024到65535之间，现在为%d", config.Port)
	}

	if config.StatsDuration < minStatsDuration {
		return fmt.Errorf("StatsDuration应该至少为%f小时，现在为%f小时", minStatsDuration.Hours(), config.StatsDuration.Hours())
	}

	if config.RefreshInterval < minRefreshInterval {
		return fmt.Errorf("刷新周期不能短于%f分钟，现在是%f分钟", minRefreshInterval.Minutes(), config.RefreshInterval.Minutes())
	}

	// 限制分析时间在24小时内，为一天内的时间
	config.ReAnalyzeTime %= 24 * time.Hour

	if config.NumRound == 0 {
		return fmt.Errorf("聚类轮次不能为0")
	}
	if config.NumClass == 0 {
		return fmt.Errorf("聚类类别数目不能为0")
	}

	if config.ApiKey != "" && config.ChannelID == "" {
		return fmt.Errorf("指定了ApiKey时必须同时指定ChannelID")
	}

	if config.MysqlHost == "" {
		config.MysqlHost = fmt.Sprintf("%s:%s",
			os.Getenv("MYSQL_SERVICE_HOST"), os.Getenv("MYSQL_SERVICE_PORT"))
	}

	return nil
}

func (s *serverImpl) Start() error {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.logger.Printf("服务器启动。配置：%v\n", s.config)

	if s.fetch != nil {
		go s.refresher(rootCtx)
	} else {
		s.logger.Println("未配置API密钥，统计刷新线程不启动")
	}

	go s.reAnalyzer(rootCtx)

	srv := s.buildServer()
	errCh := make(chan error)
	go s.serve(srv, errCh)

	// 注册信号接收器
	termSigChan := make(chan os.Signal, 1)
	signal.Notify(termSigChan, syscall.SIGTERM, syscall.SIGINT)

	<-termSigChan
	err := srv.Shutdown(rootCtx)
	if err != nil {
		return errors.Wrap(err, "关闭HTTP服务器失败")
	}
	cancel()

	// 等待HTTP服务器结束
	err = <-errCh
	if err != nil {
		return errors.Wrap(err, "HTTP关闭出现错误")
	}

	return nil
}

func (s *serverImpl) buildServer() *http.Server {
	mux := http.NewServeMux()

	const VideoIdPattern = "[\\w-]{1,64}"
	insightPattern := regexp.MustCompile(fmt.Sprintf("^/videos/(%s)/insight$", VideoIdPattern))
	mux.HandleFunc("/videos/", func(writer http.ResponseWriter, request *http.Request) {
		if !insightPattern.MatchString(request.URL.Path) {
			http.NotFound(writer, request)
			return
		}
		videoId := insightPattern.FindStringSubmatch(request.URL.Path)[1]

		insight, err := s.QueryVideoInsight(videoId)
		if err == server.ErrVideoNotFound || err == server.ErrNotAnalyzed {
			http.NotFound(writer, request)
			return
		} else if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}

		s.writeJson(writer, insight)
	})

	mux.HandleFunc("/dashboard/summary", func(writer http.ResponseWriter, request *http.Request) {
		summary, err := s.QueryDashboardSummary()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, summary)
	})

	mux.HandleFunc("/dashboard/views-over-time", func(writer http.ResponseWriter, request *http.Request) {
		points, err := s.QueryViewsOverTime()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, points)
	})

	mux.HandleFunc("/dashboard/top-videos", func(writer http.ResponseWriter, request *http.Request) {
		n := DefaultTopVideos
		if arg := request.URL.Query().Get("n"); arg != "" {
			parsed, err := strconv.Atoi(arg)
			if err != nil || parsed < 1 {
				http.Error(writer, fmt.Sprintf("参数n不合法：%s", arg), http.StatusBadRequest)
				return
			}
			n = parsed
		}

		top, err := s.QueryTopVideos(n)
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, top)
	})

	mux.HandleFunc("/dashboard/engagement", func(writer http.ResponseWriter, request *http.Request) {
		summary, err := s.QueryEngagement()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, summary)
	})

	mux.HandleFunc("/dashboard/clusters", func(writer http.ResponseWriter, request *http.Request) {
		points, err := s.QueryClusterPoints()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, points)
	})

	mux.HandleFunc("/dashboard/performance", func(writer http.ResponseWriter, request *http.Request) {
		report, err := s.QueryPerformanceReport()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJson(writer, report)
	})

	mux.HandleFunc("/reanalyze", func(writer http.ResponseWriter, request *http.Request) {
		s.ReAnalyze()
		_, _ = writer.Write([]byte("OK"))
	})

	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: mux,
	}
	return srv
}

func (s *serverImpl) writeJson(writer http.ResponseWriter, value interface{}) {
	marshal, err := json.Marshal(value)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	_, err = writer.Write(marshal)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
	}
}

func (s *serverImpl) serve(srv *http.Server, errCh chan<- error) {
	s.logger.Printf("API服务器启动")

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		errCh <- err
		return
	}

	s.logger.Printf("API服务器结束")
	errCh <- nil
}
