package models

import (
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Prediction is one scored sprint. Rows are appended once and never mutated.
type Prediction struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SprintID         int64     `gorm:"column:sprint_id;index;not null" json:"sprintId"`
	DelayProbability float64   `gorm:"column:delay_probability;not null" json:"delayProbability"`
	Recommendation   string    `gorm:"column:recommendation;type:text;not null" json:"recommendation"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:now()" json:"createdAt"`
}

func (Prediction) TableName() string { return "predictions" }

// NewPrediction builds an unsaved prediction; the store assigns the ID.
func NewPrediction(sprintID int64, probability float64, recommendation string, createdAt time.Time) (Prediction, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return Prediction{}, errors.Wrapf(BadParameterError, "delay probability %v outside [0,1]", probability)
	}
	if strings.TrimSpace(recommendation) == "" {
		return Prediction{}, errors.Wrap(BadParameterError, "empty recommendation")
	}
	return Prediction{
		SprintID:         sprintID,
		DelayProbability: probability,
		Recommendation:   recommendation,
		CreatedAt:        createdAt.UTC(),
	}, nil
}
