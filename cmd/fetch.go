/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"github.com/packagewjx/channel-analytics/internal/fetcher"
	"github.com/spf13/cobra"
	"log"
)

const (
	FlagApiKey    = "api-key"
	FlagChannel   = "channel"
	FlagOutputDir = "output-dir"
	FlagMaxVideos = "max-videos"
)

var (
	apiKey    string
	channelID string
	outputDir string
	maxVideos int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "从YouTube Data API拉取频道视频统计数据并导出CSV",
	Long: "本命令获取频道的基本信息与uploads播放列表，分页拉取所有视频的统计数据，\n" +
		"按上传日期降序输出主CSV文件、带时间戳的备份CSV，以及记录频道汇总统计的元数据JSON文件。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if apiKey == "" {
			return fmt.Errorf("必须指定API密钥")
		}
		if channelID == "" {
			return fmt.Errorf("必须指定频道ID")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := fetcher.NewFetcher(&fetcher.FetcherConfig{
			ApiKey:    apiKey,
			ChannelID: channelID,
			OutputDir: outputDir,
			MaxVideos: maxVideos,
		})
		if err != nil {
			return err
		}

		result, err := f.Run(context.Background())
		if err != nil {
			return err
		}

		log.Printf("共保存%d条视频数据到%s\n", len(result.Videos), result.MainCsvPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&apiKey, FlagApiKey, "k", "",
		"YouTube Data API密钥")
	fetchCmd.Flags().StringVarP(&channelID, FlagChannel, "c", "",
		"频道ID")
	fetchCmd.Flags().StringVarP(&outputDir, FlagOutputDir, "o", "data",
		"输出目录")
	fetchCmd.Flags().IntVarP(&maxVideos, FlagMaxVideos, "m", 0,
		"最多获取的视频数量，0表示全部")
}
