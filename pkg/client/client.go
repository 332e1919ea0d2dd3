package client

import (
	"encoding/json"
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/server"
	"github.com/pkg/errors"
	"io"
	"net/http"
)

const defaultApiHostBaseUrl = "http://channel-analytics.channel-analytics"

// NewApiClient 创建访问分析服务器的客户端。baseUrl为空时使用集群内默认地址。
func NewApiClient(baseUrl string) server.API {
	if baseUrl == "" {
		baseUrl = defaultApiHostBaseUrl
	}
	return &apiClient{baseUrl: baseUrl}
}

var _ server.API = &apiClient{}

type apiClient struct {
	baseUrl string
}

func (a *apiClient) QueryVideoInsight(videoId string) (*server.VideoInsight, error) {
	dest := &server.VideoInsight{}
	err := a.getJson(fmt.Sprintf("/videos/%s/insight", videoId), dest)
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) QueryDashboardSummary() (*server.DashboardSummary, error) {
	dest := &server.DashboardSummary{}
	err := a.getJson("/dashboard/summary", dest)
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) ReAnalyze() {
	_, _ = http.Get(a.baseUrl + "/reanalyze")
}

func (a *apiClient) getJson(path string, dest interface{}) error {
	response, err := http.Get(a.baseUrl + path)
	if err != nil {
		return errors.Wrap(err, "请求时出现异常")
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusNotFound {
		return server.ErrVideoNotFound
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "读取时出现异常")
	}

	err = json.Unmarshal(body, dest)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("解析json异常，json为\n%s", string(body)))
	}

	return nil
}
