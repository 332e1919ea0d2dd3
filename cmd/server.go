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
	"github.com/packagewjx/channel-analytics/internal/server"
	"github.com/spf13/cobra"
	"time"
)

const (
	FlagPort            = "port"
	FlagRefreshInterval = "interval"
	FlagStatsDuration   = "duration"
	FlagReAnalyzeTime   = "re-analyze-time"
	FlagNumRound        = "round"
	FlagNumClass        = "class"
	FlagSeed            = "seed"
	FlagInitialDataFile = "data-file"
	FlagMysqlHost       = "mysql-host"
	FlagServerApiKey    = "api-key"
	FlagServerChannel   = "channel"
)

var (
	port            uint16
	refreshInterval time.Duration
	statsDuration   time.Duration
	reAnalyzeTime   time.Duration
	numRound        uint
	serverNumClass  uint
	seed            int64
	initialDataFile string
	mysqlHost       string
	serverApiKey    string
	serverChannelID string
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "频道数据分析服务器",
	Long: "本服务器将从YouTube Data API每隔一段时间（通过interval指定）刷新一次视频统计数据，并保存记录。\n" +
		"统计快照仅保留最近一段时间（通过duration设置）。服务器每天定时（通过re-analyze-time设置）执行聚类与性能标签分析，\n" +
		"以确保数据反映近期的真实情况。用户可以通过本服务器提供的接口获取仪表盘各项数据。\n",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.NewServer(&server.ServerConfig{
			StatsDuration:      statsDuration,
			Port:               port,
			RefreshInterval:    refreshInterval,
			ReAnalyzeTime:      reAnalyzeTime,
			NumClass:           serverNumClass,
			NumRound:           numRound,
			Seed:               seed,
			InitialDataCsvFile: initialDataFile,
			MysqlHost:          mysqlHost,
			ApiKey:             serverApiKey,
			ChannelID:          serverChannelID,
		})
		if err != nil {
			return err
		}

		return s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Uint16VarP(&port, FlagPort, "p", server.DefaultPort,
		"服务端口号")
	serverCmd.Flags().DurationVarP(&refreshInterval, FlagRefreshInterval, "i", server.DefaultRefreshInterval,
		"刷新统计数据的间隔，至少为15分钟")
	serverCmd.Flags().DurationVarP(&statsDuration, FlagStatsDuration, "d", server.DefaultStatsDuration,
		"保存统计快照的时间，至少为1天")
	serverCmd.Flags().DurationVarP(&reAnalyzeTime, FlagReAnalyzeTime, "t", server.DefaultReAnalyzeTime,
		"每天定时执行分析的时间，值应该小于24小时")
	serverCmd.Flags().UintVarP(&numRound, FlagNumRound, "r", server.DefaultNumRound,
		"聚类迭代次数")
	serverCmd.Flags().UintVarP(&serverNumClass, FlagNumClass, "c", server.DefaultNumClass,
		"聚类类别数量")
	serverCmd.Flags().Int64Var(&seed, FlagSeed, server.DefaultSeed,
		"聚类随机种子")
	serverCmd.Flags().StringVarP(&initialDataFile, FlagInitialDataFile, "f", "",
		"初始数据集文件。若不为空，则启动时将会读取此文件并作为视频的统计快照写入数据库。若为空，则使用原有数据")
	serverCmd.Flags().StringVar(&mysqlHost, FlagMysqlHost, "",
		"Mysql服务器主机端口，格式为：host:port。若为空，则读取环境变量MYSQL_SERVICE_HOST与MYSQL_SERVICE_PORT取得")
	serverCmd.Flags().StringVar(&serverApiKey, FlagServerApiKey, "",
		"YouTube Data API密钥。若为空，则不启动统计刷新线程，仅使用数据库已有数据")
	serverCmd.Flags().StringVar(&serverChannelID, FlagServerChannel, "",
		"频道ID。指定了api-key时必须指定")
}
