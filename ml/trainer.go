package ml

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

const splitStream = 0x5eed

// TrainerConfig parameterizes one training run.
type TrainerConfig struct {
	FeatureKeys []string
	// TestSize is the fraction of each class held out for evaluation.
	TestSize   float64
	Seed       uint64
	MinRecords int
	Forest     ForestConfig
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		FeatureKeys: models.FeatureKeys,
		TestSize:    0.3,
		Seed:        42,
		MinRecords:  2,
		Forest:      DefaultForestConfig(),
	}
}

// Train fits a scaler and a forest on records and evaluates the forest on a
// held-out partition. It returns either a complete artifact or an error.
func Train(ctx context.Context, records []models.Sprint, cfg TrainerConfig) (*Artifact, error) {
	keys := cfg.FeatureKeys
	if len(keys) == 0 {
		keys = models.FeatureKeys
	}
	minRecords := max(cfg.MinRecords, 2)
	if len(records) < minRecords {
		return nil, errors.Wrapf(models.ErrInsufficientData,
			"got %d sprints, need at least %d", len(records), minRecords)
	}
	if cfg.TestSize < 0 || cfg.TestSize >= 1 {
		return nil, errors.Wrapf(models.BadParameterError, "test size %v outside [0,1)", cfg.TestSize)
	}

	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		v, err := r.Select(keys)
		if err != nil {
			return nil, err
		}
		features[i] = v.Values
		if r.IsDelayed() {
			labels[i] = 1
		}
	}

	trainIdx, testIdx := stratifiedSplit(labels, cfg.TestSize, cfg.Seed)
	if err := checkClasses(labels, trainIdx); err != nil {
		return nil, err
	}

	xTrain := mat.NewDense(len(trainIdx), len(keys), nil)
	yTrain := make([]int, len(trainIdx))
	for row, i := range trainIdx {
		xTrain.SetRow(row, features[i])
		yTrain[row] = labels[i]
	}
	scaler, err := FitScaler(xTrain, keys)
	if err != nil {
		return nil, err
	}
	scaledTrain, err := scaleRows(scaler, features, trainIdx)
	if err != nil {
		return nil, err
	}

	forestCfg := cfg.Forest
	forestCfg.Seed = cfg.Seed
	forest, err := FitForest(ctx, scaledTrain, yTrain, forestCfg)
	if err != nil {
		return nil, err
	}

	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	accuracy, err := evaluate(forest, scaler, features, labels, evalIdx)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		ID:          uuid.New(),
		FeatureKeys: slices.Clone(keys),
		Scaler:      scaler,
		Forest:      forest,
		TrainedAt:   time.Now().UTC(),
		Accuracy:    accuracy,
		TrainRows:   len(trainIdx),
		HeldOutRows: len(testIdx),
	}, nil
}

// stratifiedSplit shuffles each class with a seeded stream and holds out
// round(n*testSize) rows of it, always leaving one row of the class in training.
func stratifiedSplit(labels []int, testSize float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewPCG(seed, splitStream))
	var byClass [2][]int
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	for _, idx := range byClass {
		if len(idx) == 0 {
			continue
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := min(int(math.Round(float64(len(idx))*testSize)), len(idx)-1)
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	slices.Sort(train)
	slices.Sort(test)
	return train, test
}

func checkClasses(labels []int, idx []int) error {
	var counts [2]int
	for _, i := range idx {
		counts[labels[i]]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return errors.Wrapf(models.ErrClassImbalance,
			"training partition has %d on-time and %d delayed sprints", counts[0], counts[1])
	}
	return nil
}

func scaleRows(scaler ScalerParams, features [][]float64, idx []int) ([][]float64, error) {
	out := make([][]float64, len(idx))
	for row, i := range idx {
		scaled, err := scaler.Transform(features[i])
		if err != nil {
			return nil, err
		}
		out[row] = scaled
	}
	return out, nil
}

func evaluate(forest *Forest, scaler ScalerParams, features [][]float64, labels []int, idx []int) (float64, error) {
	scaled, err := scaleRows(scaler, features, idx)
	if err != nil {
		return 0, err
	}
	correct := 0
	for row, i := range idx {
		p, err := forest.Proba(scaled[row])
		if err != nil {
			return 0, err
		}
		predicted := 0
		if p > DelayThreshold {
			predicted = 1
		}
		if predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(idx)), nil
}
