package analysis

import (
	"github.com/packagewjx/kmeanspp"
	"log"
	"math/rand"
	"sort"
)

// 聚类算法接口
type Algorithm interface {
	Run(data [][]float32, numClass int, context interface{}) (centers [][]float32, class []int)
}

type AlgorithmType string

const (
	// KMeans 可复现实现。相同输入顺序与种子得到相同的中心与标签。
	KMeans = AlgorithmType("kmeans")
	// KMeansPP 库实现。初始中心依赖全局随机源，结果不可复现。
	KMeansPP = AlgorithmType("kmeanspp")
)

func GetAlgorithm(algorithmType AlgorithmType) Algorithm {
	switch algorithmType {
	case KMeans:
		return &kMeansRunner{}
	case KMeansPP:
		return &kMeansPPRunner{}
	default:
		return nil
	}
}

type KMeansContext struct {
	Round int
	Seed  int64
}

const (
	KMeansDefaultRound = 30
	KMeansDefaultSeed  = 42
)

// context为nil、类型不对或者为nil指针时均使用默认参数
func kMeansParams(context interface{}) (round int, seed int64) {
	round, seed = KMeansDefaultRound, KMeansDefaultSeed

	ctx, ok := context.(*KMeansContext)
	if ok && ctx != nil {
		return ctx.Round, ctx.Seed
	}
	if context != nil && !ok {
		log.Printf("输入的context不是KMeansContext类型。将使用默认参数")
	}
	return
}

// 可复现的K-Means。kmeanspp在选取初始中心前会用当前时间重置全局随机源，
// 且Go 1.24起rand.Seed对全局随机源不再生效，无法通过种子取得一致结果，
// 因此这里用独立随机源执行K-Means++初始化与迭代。
// 类别号按中心特征值升序编号，与初始中心的选取顺序无关。
type kMeansRunner struct {
}

func (k *kMeansRunner) Run(data [][]float32, numClass int, context interface{}) (centers [][]float32, class []int) {
	round, seed := kMeansParams(context)
	r := rand.New(rand.NewSource(seed))

	centers = initialCenters(r, data, numClass)
	class = make([]int, len(data))
	for i, point := range data {
		class[i] = nearestCenter(point, centers)
	}

	for iter := 0; iter < round; iter++ {
		updateCenters(data, class, centers)
		changed := false
		for i, point := range data {
			if c := nearestCenter(point, centers); c != class[i] {
				class[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return canonicalize(centers, class)
}

// K-Means++初始化：第一个中心随机选取，其余按与最近已有中心距离的平方加权选取
func initialCenters(r *rand.Rand, data [][]float32, numClass int) [][]float32 {
	centers := make([][]float32, 0, numClass)
	centers = append(centers, copyPoint(data[r.Intn(len(data))]))

	dist := make([]float64, len(data))
	for len(centers) < numClass {
		total := float64(0)
		for i, point := range data {
			d := distanceSquare(point, centers[0])
			for _, center := range centers[1:] {
				if d2 := distanceSquare(point, center); d2 < d {
					d = d2
				}
			}
			dist[i] = d
			total += d
		}

		next := -1
		if total > 0 {
			target := r.Float64() * total
			for i, d := range dist {
				if d == 0 {
					continue
				}
				next = i
				target -= d
				if target < 0 {
					break
				}
			}
		}
		if next < 0 {
			// 不同取值的点少于类别数，退化为随机选取
			next = r.Intn(len(data))
		}
		centers = append(centers, copyPoint(data[next]))
	}

	return centers
}

func updateCenters(data [][]float32, class []int, centers [][]float32) {
	sum := make([][]float64, len(centers))
	count := make([]int, len(centers))
	for i := range sum {
		sum[i] = make([]float64, len(data[0]))
	}
	for i, point := range data {
		count[class[i]]++
		for j, v := range point {
			sum[class[i]][j] += float64(v)
		}
	}
	for c := range centers {
		if count[c] == 0 {
			// 没有成员的类别保留原中心
			continue
		}
		for j := range centers[c] {
			centers[c][j] = float32(sum[c][j] / float64(count[c]))
		}
	}
}

// 按中心特征值升序重新编号中心与标签
func canonicalize(centers [][]float32, class []int) ([][]float32, []int) {
	order := make([]int, len(centers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lessPoint(centers[order[i]], centers[order[j]])
	})

	remap := make([]int, len(centers))
	sorted := make([][]float32, len(centers))
	for newId, oldId := range order {
		remap[oldId] = newId
		sorted[newId] = centers[oldId]
	}
	for i := range class {
		class[i] = remap[class[i]]
	}
	return sorted, class
}

func nearestCenter(point []float32, centers [][]float32) int {
	best := 0
	bestDist := distanceSquare(point, centers[0])
	for i := 1; i < len(centers); i++ {
		if d := distanceSquare(point, centers[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func distanceSquare(a, b []float32) float64 {
	sum := float64(0)
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func lessPoint(a, b []float32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func copyPoint(point []float32) []float32 {
	return append([]float32{}, point...)
}

// 库实现的K-Means++。kmeanspp使用math/rand全局随机源选取初始中心，
// 多次运行的结果不保证一致，不用于需要可复现结果的场景。
type kMeansPPRunner struct {
}

func (k *kMeansPPRunner) Run(data [][]float32, numClass int, context interface{}) (centers [][]float32, class []int) {
	round, _ := kMeansParams(context)
	return kmeanspp.KMeansPP(numClass, round, data)
}
