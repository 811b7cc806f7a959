package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

type SprintRepository struct {
	pool Pool
}

func NewSprintRepository(pool Pool) *SprintRepository {
	return &SprintRepository{pool: pool}
}

// FetchAll returns every labelled sprint ordered by id.
func (r *SprintRepository) FetchAll(ctx context.Context) ([]models.Sprint, error) {
	sql, args, err := NewQueryBuilder().
		Select(sprintColumns...).
		From(TableSprints).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building sprints query")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err, "fetch sprints")
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	for rows.Next() {
		var (
			id      int64
			metrics models.SprintMetrics
			status  string
		)
		if err := rows.Scan(&id, &metrics.TasksCompleted, &metrics.TasksPending,
			&metrics.IssuesReported, &metrics.LikertScore, &status); err != nil {
			return nil, schemaError(err, "scan sprint row")
		}
		s, err := models.NewSprint(id, metrics, status)
		if err != nil {
			return nil, schemaError(err, "invalid sprint row")
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate sprints")
	}
	return sprints, nil
}

// InsertSprint appends an upstream sprint row and returns its id.
func (r *SprintRepository) InsertSprint(ctx context.Context, s models.Sprint) (int64, error) {
	sql, args, err := NewQueryBuilder().
		Insert(TableSprints).
		Columns(sprintColumns[1:]...).
		Values(s.TasksCompleted, s.TasksPending, s.IssuesReported, s.LikertScore, string(s.Status)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building sprint insert")
	}

	var id int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, classify(err, "insert sprint")
	}
	return id, nil
}

// InsertPrediction appends p and returns the id assigned by the store.
func (r *SprintRepository) InsertPrediction(ctx context.Context, p models.Prediction) (int64, error) {
	sql, args, err := NewQueryBuilder().
		Insert(TablePredictions).
		Columns(predictionColumns[1:]...).
		Values(p.SprintID, p.DelayProbability, p.Recommendation, p.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building prediction insert")
	}

	var id int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, classify(err, "insert prediction")
	}
	return id, nil
}

// FetchRecentPredictions returns at most limit predictions, newest first.
func (r *SprintRepository) FetchRecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error) {
	if limit < 1 {
		return nil, errors.Wrapf(models.BadParameterError, "limit must be positive, got %d", limit)
	}
	sql, args, err := NewQueryBuilder().
		Select(predictionColumns...).
		From(TablePredictions).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building predictions query")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err, "fetch predictions")
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.ID, &p.SprintID, &p.DelayProbability, &p.Recommendation, &p.CreatedAt); err != nil {
			return nil, schemaError(err, "scan prediction row")
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate predictions")
	}
	return predictions, nil
}
