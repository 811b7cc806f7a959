package models

import (
	"github.com/cockroachdb/errors"
)

type SprintStatus string

const (
	StatusOnTime  SprintStatus = "OnTime"
	StatusDelayed SprintStatus = "Delayed"
)

// Likert bounds for the team satisfaction score.
const (
	MinLikertScore = 1
	MaxLikertScore = 5
)

func ParseSprintStatus(s string) (SprintStatus, error) {
	switch SprintStatus(s) {
	case StatusOnTime, StatusDelayed:
		return SprintStatus(s), nil
	}
	return "", errors.Wrapf(BadParameterError, "unknown sprint status %q", s)
}

// SprintMetrics holds the telemetry observed for one sprint.
type SprintMetrics struct {
	TasksCompleted int `gorm:"column:tasks_completed;not null" json:"tasksCompleted"`
	TasksPending   int `gorm:"column:tasks_pending;not null" json:"tasksPending"`
	IssuesReported int `gorm:"column:issues_reported;not null" json:"issuesReported"`
	LikertScore    int `gorm:"column:likert_score;not null" json:"likertScore"`
}

func NewSprintMetrics(tasksCompleted, tasksPending, issuesReported, likertScore int) (SprintMetrics, error) {
	m := SprintMetrics{
		TasksCompleted: tasksCompleted,
		TasksPending:   tasksPending,
		IssuesReported: issuesReported,
		LikertScore:    likertScore,
	}
	if err := m.Validate(); err != nil {
		return SprintMetrics{}, err
	}
	return m, nil
}

func (m SprintMetrics) Validate() error {
	if m.TasksCompleted < 0 || m.TasksPending < 0 || m.IssuesReported < 0 {
		return errors.Wrap(BadParameterError, "task and issue counts must be non-negative")
	}
	if m.LikertScore < MinLikertScore || m.LikertScore > MaxLikertScore {
		return errors.Wrapf(BadParameterError, "likert score %d outside [%d,%d]",
			m.LikertScore, MinLikertScore, MaxLikertScore)
	}
	return nil
}

// Value returns the metric registered under key.
func (m SprintMetrics) Value(key string) (float64, bool) {
	switch key {
	case FeatureTasksCompleted:
		return float64(m.TasksCompleted), true
	case FeatureTasksPending:
		return float64(m.TasksPending), true
	case FeatureIssuesReported:
		return float64(m.IssuesReported), true
	case FeatureLikertScore:
		return float64(m.LikertScore), true
	}
	return 0, false
}

// Vector returns the metrics in FeatureKeys order.
func (m SprintMetrics) Vector() FeatureVector {
	v, _ := m.Select(FeatureKeys)
	return v
}

// Select builds a vector over the given keys, in order.
func (m SprintMetrics) Select(keys []string) (FeatureVector, error) {
	values := make([]float64, len(keys))
	for i, k := range keys {
		val, ok := m.Value(k)
		if !ok {
			return FeatureVector{}, errors.Wrapf(ErrFeatureMismatch, "unknown feature %q", k)
		}
		values[i] = val
	}
	return FeatureVector{Keys: append([]string(nil), keys...), Values: values}, nil
}

// Sprint is a labelled historical sprint row. Rows are produced upstream and
// never modified once read.
type Sprint struct {
	ID            int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SprintMetrics `gorm:"embedded"`
	Status        SprintStatus `gorm:"column:status;type:text;not null;check:status IN ('OnTime','Delayed')" json:"status"`
}

func (Sprint) TableName() string { return "sprints" }

func NewSprint(id int64, metrics SprintMetrics, status string) (Sprint, error) {
	if err := metrics.Validate(); err != nil {
		return Sprint{}, err
	}
	st, err := ParseSprintStatus(status)
	if err != nil {
		return Sprint{}, err
	}
	return Sprint{ID: id, SprintMetrics: metrics, Status: st}, nil
}

func (s Sprint) IsDelayed() bool { return s.Status == StatusDelayed }
