package analysis

import (
	"fmt"
	"github.com/packagewjx/channel-analytics/pkg/core"
	"github.com/pkg/errors"
)

// FeatureMatrix 构造聚类用的特征矩阵，每行为一个视频的(Views, Likes, Comments)。
// 加载阶段缺失的特征值已经是0，不需要再次填充。
func FeatureMatrix(stats []*core.VideoStats) [][]float32 {
	data := make([][]float32, len(stats))
	for i, s := range stats {
		data[i] = []float32{float32(s.Views), float32(s.Likes), float32(s.Comments)}
	}
	return data
}

// AssignClusters 对视频统计数据执行K-Means聚类，返回每个视频的类别标签与各类中心。
// 标签取值为[0, numClass)，类别号按中心特征值升序编号；
// 相同输入顺序与相同种子保证得到相同的标签与中心。
func AssignClusters(stats []*core.VideoStats, numClass int, context *KMeansContext) (class []int, centers [][]float32, err error) {
	if len(stats) == 0 {
		return nil, nil, errors.Wrap(core.ErrInvalidInput, "数据集为空，无法聚类")
	}
	if numClass < 1 || numClass > len(stats) {
		return nil, nil, errors.Wrap(core.ErrInvalidInput,
			fmt.Sprintf("类别数量%d不在[1, %d]范围内", numClass, len(stats)))
	}

	alg := GetAlgorithm(KMeans)
	centers, class = alg.Run(FeatureMatrix(stats), numClass, context)
	return class, centers, nil
}

// CentersToCentroids 将算法输出的中心矩阵转换为带类别号的中心数据
func CentersToCentroids(centers [][]float32) []*core.ClusterCentroid {
	result := make([]*core.ClusterCentroid, len(centers))
	for i, center := range centers {
		c := &core.ClusterCentroid{ClusterId: uint(i)}
		if len(center) == core.NumFeatureFields {
			c.Views = center[0]
			c.Likes = center[1]
			c.Comments = center[2]
		}
		result[i] = c
	}
	return result
}
