package ml

import (
	"math/rand/v2"
	"sort"

	"github.com/cockroachdb/errors"
)

// Node is one decision node of a flattened tree. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	// Proba is the fraction of delayed samples that reached the node.
	Proba float64 `json:"p"`
}

func (n Node) isLeaf() bool { return n.Left < 0 }

// Tree is a binary classification tree stored as a node slice rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Proba walks x down the tree and returns the delayed fraction at its leaf.
func (t Tree) Proba(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Proba
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that Proba terminates for any input of width features.
// Children always sit after their parent, which rules out cycles.
func (t Tree) validate(features int) error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= features {
			return errors.Newf("node %d splits on feature %d of %d", i, n.Feature, features)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return errors.Newf("node %d has child %d outside (%d,%d)", i, child, i, len(t.Nodes))
			}
		}
	}
	return nil
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

// growTree fits a CART tree with gini impurity on the rows listed in sample.
// sample may repeat indices (bootstrap).
func growTree(x [][]float64, y []int, sample []int, cfg ForestConfig, rng *rand.Rand) Tree {
	b := &treeBuilder{
		x:           x,
		y:           y,
		maxDepth:    cfg.MaxDepth,
		minSplit:    max(cfg.MinSamplesSplit, 2),
		maxFeatures: cfg.maxFeatures(len(x[0])),
		rng:         rng,
	}
	b.build(sample, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(sample []int, depth int) int {
	pos := 0
	for _, i := range sample {
		pos += b.y[i]
	}
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Proba: float64(pos) / float64(len(sample))})

	if pos == 0 || pos == len(sample) || len(sample) < b.minSplit {
		return id
	}
	if b.maxDepth > 0 && depth >= b.maxDepth {
		return id
	}

	feature, threshold, ok := b.bestSplit(sample, pos)
	if !ok {
		return id
	}
	var left, right []int
	for _, i := range sample {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

// bestSplit evaluates maxFeatures randomly drawn features, and keeps drawing
// past that budget only while no feature could separate the sample.
func (b *treeBuilder) bestSplit(sample []int, pos int) (int, float64, bool) {
	n := len(sample)
	order := b.rng.Perm(len(b.x[0]))
	sorted := make([]int, n)

	bestFeature, bestThreshold, found := -1, 0.0, false
	bestImpurity := 0.0
	for visited, f := range order {
		if visited >= b.maxFeatures && found {
			break
		}
		copy(sorted, sample)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		leftPos := 0
		for k := 0; k < n-1; k++ {
			leftPos += b.y[sorted[k]]
			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := k+1, n-k-1
			impurity := (float64(nl)*gini(leftPos, nl) + float64(nr)*gini(pos-leftPos, nr)) / float64(n)
			if !found || impurity < bestImpurity {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				bestFeature, bestThreshold, bestImpurity, found = f, threshold, impurity, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
