package dataset

import (
	"encoding/csv"
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
	"io"
	"strconv"
	"strings"
	"time"
)

type DataFileLoader interface {
	Load(in io.Reader) ([]*core.VideoStats, error)
}

type DataFormat string

const (
	CSV = DataFormat("csv")
)

func NewDataLoader(format DataFormat) DataFileLoader {
	switch format {
	case CSV:
		return &csvLoader{}
	default:
		return nil
	}
}

// CSV列名。表头名称匹配前会去除首尾空白，Upload_Date与UploadDate均可接受。
const (
	ColVideoID     = "VideoID"
	ColTitle       = "Title"
	ColUploadDate  = "UploadDate"
	ColUploadDate2 = "Upload_Date"
	ColDescription = "Description"
	ColDuration    = "Duration"
	ColViews       = "Views"
	ColLikes       = "Likes"
	ColDislikes    = "Dislikes"
	ColComments    = "Comments"
	ColURL         = "URL"
)

// 上传日期允许的格式
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type csvLoader struct {
}

func (c *csvLoader) Load(in io.Reader) ([]*core.VideoStats, error) {
	reader := csv.NewReader(in)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(core.ErrInvalidInput, "文件为空，没有表头")
	} else if err != nil {
		return nil, errors.Wrap(err, "读取表头出错")
	}

	index := make(map[string]int)
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[ColUploadDate]; !ok {
		if i, ok2 := index[ColUploadDate2]; ok2 {
			index[ColUploadDate] = i
		}
	}

	for _, required := range []string{ColTitle, ColUploadDate, ColViews, ColLikes, ColComments} {
		if _, ok := index[required]; !ok {
			return nil, errors.Wrap(core.ErrInvalidInput, fmt.Sprintf("缺少必要的列%s", required))
		}
	}

	result := make([]*core.VideoStats, 0, 16)

	var record []string
	recordRead := 0
	for record, err = reader.Read(); err == nil; record, err = reader.Read() {
		recordRead++

		s := &core.VideoStats{
			VideoID:     stringField(record, index, ColVideoID),
			Title:       stringField(record, index, ColTitle),
			Description: stringField(record, index, ColDescription),
			Duration:    stringField(record, index, ColDuration),
			URL:         stringField(record, index, ColURL),
		}

		s.UploadDate, err = parseDate(stringField(record, index, ColUploadDate))
		if err != nil {
			return nil, errors.Wrap(core.ErrInvalidInput,
				fmt.Sprintf("第%d行的上传日期有误，数据为[%s]", recordRead, stringField(record, index, ColUploadDate)))
		}

		for _, col := range []struct {
			name string
			dest *uint64
		}{
			{ColViews, &s.Views},
			{ColLikes, &s.Likes},
			{ColDislikes, &s.Dislikes},
			{ColComments, &s.Comments},
		} {
			*col.dest, err = parseMetric(stringField(record, index, col.name))
			if err != nil {
				return nil, errors.Wrap(core.ErrInvalidInput,
					fmt.Sprintf("第%d行的%s有误，数据为[%s]", recordRead, col.name, stringField(record, index, col.name)))
			}
		}

		result = append(result, s)
	}

	if err != io.EOF {
		// 列数不一致等格式问题由csv.Reader报告，同样按不合法输入处理并指明行号
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, errors.Wrap(core.ErrInvalidInput,
				fmt.Sprintf("第%d行格式错误：%v", recordRead+1, parseErr.Err))
		}
		return nil, errors.Wrap(err, "读取数据出错")
	}

	return result, nil
}

func stringField(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// 空值按缺失处理，记为0。非数字则返回错误。
func parseMetric(field string) (uint64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	return strconv.ParseUint(field, 10, 64)
}

func parseDate(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return time.Time{}, fmt.Errorf("日期为空")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, field); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期%s", field)
}
