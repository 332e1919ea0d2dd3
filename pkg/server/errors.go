package server

import "errors"

// ErrVideoNotFound 视频不存在
var ErrVideoNotFound = errors.New("video not found")

// ErrNotAnalyzed 视频存在但还没有分析结果
var ErrNotAnalyzed = errors.New("video not analyzed")
