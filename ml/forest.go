package ml

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// ForestConfig controls the bagged tree ensemble.
type ForestConfig struct {
	Trees           int
	MaxDepth        int // 0 grows trees until leaves are pure
	MinSamplesSplit int
	MaxFeatures     int // 0 means ceil(sqrt(features))
	Seed            uint64
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MinSamplesSplit: 2, Seed: 42}
}

func (c ForestConfig) maxFeatures(features int) int {
	if c.MaxFeatures > 0 {
		return min(c.MaxFeatures, features)
	}
	return max(1, int(math.Ceil(math.Sqrt(float64(features)))))
}

// Forest averages the delayed-class probability of its trees.
type Forest struct {
	Features int    `json:"features"`
	Trees    []Tree `json:"trees"`
}

// FitForest grows cfg.Trees trees on bootstrap samples of (x, y). Every tree
// draws from its own PCG stream keyed by (Seed, tree index), so results do not
// depend on scheduling.
func FitForest(ctx context.Context, x [][]float64, y []int, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.Wrapf(models.ErrInsufficientData, "%d rows for %d labels", len(x), len(y))
	}
	if cfg.Trees < 1 {
		return nil, errors.Newf("forest needs at least one tree, got %d", cfg.Trees)
	}
	features := len(x[0])
	forest := &Forest{Features: features, Trees: make([]Tree, cfg.Trees)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range cfg.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)+1))
			sample := make([]int, len(x))
			for i := range sample {
				sample[i] = rng.IntN(len(x))
			}
			forest.Trees[t] = growTree(x, y, sample, cfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "growing forest")
	}
	return forest, nil
}

// Proba returns the mean delayed probability over all trees.
func (f *Forest) Proba(x []float64) (float64, error) {
	if len(x) != f.Features {
		return 0, errors.Wrapf(models.ErrFeatureMismatch,
			"got %d features, forest expects %d", len(x), f.Features)
	}
	if len(f.Trees) == 0 {
		return 0, errors.Wrap(models.ErrNotTrained, "forest has no trees")
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Proba(x)
	}
	return sum / float64(len(f.Trees)), nil
}
