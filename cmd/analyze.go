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
	"encoding/json"
	"fmt"
	"github.com/packagewjx/channel-analytics/internal/analysis"
	"github.com/packagewjx/channel-analytics/internal/dataset"
	"github.com/spf13/cobra"
	"log"
	"os"
)

// Global Flags
const (
	DataFormatFlag      = "dataFormat"
	NumClassFlag        = "class"
	OutputPrecisionFlag = "outputPrecision"
	CentersFileFlag     = "centersFile"
	SummaryFileFlag     = "summaryFile"
)

// Global Defaults
const (
	DefaultOutputPrecision = 2
	DefaultNumClass        = 3
)

// Flags for K-Means
const (
	KMeansRoundFlag = "kMeansRound"
	KMeansSeedFlag  = "kMeansSeed"
)

var format string
var numClass int
var outputPrecision int
var centersFile string
var summaryFile string
var kMeansRound int
var kMeansSeed int64

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze dataFile outputFile",
	Short: "读取数据集执行聚类与性能标签分析，并输出结果到新文件中",
	Long: "读取视频统计数据CSV，对(Views, Likes, Comments)三维特征执行K-Means聚类，\n" +
		"按当前数据集的平均播放量给每个视频打High/Low标签，输出带Cluster与Performance两列的CSV。\n" +
		"可选输出各类中心文件与互动汇总JSON文件。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("参数错误")
		} else if args[0] == args[1] {
			return fmt.Errorf("dataFile与outputFile不能一致")
		}

		if numClass < 1 {
			return fmt.Errorf("类数量参数不合法")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var dataType dataset.DataFormat
		switch format {
		default:
			dataType = dataset.CSV
		}
		loader := dataset.NewDataLoader(dataType)

		log.Println("读取数据中")
		fin, err := os.Open(args[0])
		if err != nil {
			return err
		}
		stats, err := loader.Load(fin)
		_ = fin.Close()
		if err != nil {
			return err
		}
		log.Printf("读取数据完成，共%d条记录\n", len(stats))

		log.Println("运行分析流水线中")
		result, err := analysis.Analyze(stats, numClass, &analysis.KMeansContext{
			Round: kMeansRound,
			Seed:  kMeansSeed,
		})
		if err != nil {
			return err
		}
		log.Println("运行分析流水线完成")

		fout, err := os.Create(args[1])
		if err != nil {
			return err
		}
		err = dataset.WriteAnalyzedStats(fout, stats, result.Class, result.Performance)
		_ = fout.Close()
		if err != nil {
			return err
		}
		log.Printf("结果已输出到%s，性能阈值为%.2f\n", args[1], result.Threshold)

		if centersFile != "" {
			f, err := os.Create(centersFile)
			if err != nil {
				return err
			}
			err = dataset.WriteCentroids(f, result.Centroids, outputPrecision)
			_ = f.Close()
			if err != nil {
				return err
			}
		}

		if summaryFile != "" {
			marshal, err := json.MarshalIndent(result.Engagement, "", "  ")
			if err != nil {
				return err
			}
			err = os.WriteFile(summaryFile, marshal, 0644)
			if err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&format, DataFormatFlag, "f", string(dataset.CSV),
		"数据文件格式。默认为csv，可选值：csv")
	analyzeCmd.Flags().IntVarP(&numClass, NumClassFlag, "c", DefaultNumClass,
		"聚类类别数量，默认为3")
	analyzeCmd.Flags().IntVarP(&outputPrecision, OutputPrecisionFlag, "p", DefaultOutputPrecision,
		"中心文件数据精度，默认为2")
	analyzeCmd.Flags().StringVar(&centersFile, CentersFileFlag, "",
		"各类中心的输出文件。为空时不输出")
	analyzeCmd.Flags().StringVar(&summaryFile, SummaryFileFlag, "",
		"互动汇总JSON的输出文件。为空时不输出")

	// Flags for K-Means Algorithm
	analyzeCmd.Flags().IntVar(&kMeansRound, KMeansRoundFlag, analysis.KMeansDefaultRound,
		"K-Means算法执行的轮次")
	analyzeCmd.Flags().Int64Var(&kMeansSeed, KMeansSeedFlag, analysis.KMeansDefaultSeed,
		"K-Means算法的随机种子。相同输入与种子保证相同的聚类结果")
}
