package core

import "errors"

// ErrInvalidInput 输入数据不合法。数据集为空、数值或日期字段格式错误、
// 类别数量超出记录数时返回。此类错误终止本次计算，调用方不应使用默认值代替结果。
var ErrInvalidInput = errors.New("输入数据不合法")
