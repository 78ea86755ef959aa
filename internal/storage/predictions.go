package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
)

// UpsertPrediction creates or replaces the record for the prediction's
// (date, model, category) key. The items JSON is replaced on conflict;
// id, created_at and likes_count of the original row are preserved, so
// re-running the same write is idempotent.
func (s *SQLiteStorage) UpsertPrediction(ctx context.Context, p *model.Prediction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if p == nil {
		return ErrNilRecord
	}
	if err := validateString(p.Date, "date"); err != nil {
		return err
	}
	if !model.ValidModelKey(p.Model) {
		return fmt.Errorf("%w: %q", common.ErrInvalidModelKey, p.Model)
	}

	itemsJSON, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction items: %w", err)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, date, model, category, predictions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, model, category) DO UPDATE SET
			predictions = excluded.predictions
	`, p.ID, p.Date, string(p.Model), p.Category, string(itemsJSON))

	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}

	return nil
}

// GetPredictionsByDate returns all records for a cycle date, ordered by model.
func (s *SQLiteStorage) GetPredictionsByDate(ctx context.Context, date string) ([]model.Prediction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(date, "date"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, model, category, predictions, likes_count, created_at
		FROM predictions
		WHERE date = ?
		ORDER BY model
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var predictions []model.Prediction
	for rows.Next() {
		p, scanErr := scanPrediction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		predictions = append(predictions, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

// ListDates returns all distinct cycle dates with predictions, newest first.
func (s *SQLiteStorage) ListDates(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM predictions ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dates: %w", err)
	}

	return dates, nil
}

// IncrementLikes adds one like to a prediction record.
func (s *SQLiteStorage) IncrementLikes(ctx context.Context, predictionID string) error {
	return s.adjustLikes(ctx, predictionID, `
		UPDATE predictions SET likes_count = likes_count + 1 WHERE id = ?
	`)
}

// DecrementLikes removes one like from a prediction record, never below zero.
func (s *SQLiteStorage) DecrementLikes(ctx context.Context, predictionID string) error {
	return s.adjustLikes(ctx, predictionID, `
		UPDATE predictions SET likes_count = MAX(likes_count - 1, 0) WHERE id = ?
	`)
}

func (s *SQLiteStorage) adjustLikes(ctx context.Context, predictionID, query string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(predictionID, "predictionID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, predictionID)
	if err != nil {
		return fmt.Errorf("failed to update likes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: prediction %s", common.ErrNotFound, predictionID)
	}

	return nil
}

// ModelMetrics aggregates item counts and average chance per model across
// all stored predictions.
func (s *SQLiteStorage) ModelMetrics(ctx context.Context) ([]service.ModelMetrics, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, predictions FROM predictions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type tally struct {
		totalItems  int
		totalChance float64
		count       int
	}
	tallies := make(map[string]*tally)
	for _, key := range model.AllModelKeys() {
		tallies[string(key)] = &tally{}
	}

	for rows.Next() {
		var modelKey, itemsJSON string
		if err := rows.Scan(&modelKey, &itemsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}

		var items []model.PredictionItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prediction items: %w", err)
		}

		t, ok := tallies[modelKey]
		if !ok {
			t = &tally{}
			tallies[modelKey] = t
		}
		t.totalItems += len(items)
		for _, item := range items {
			t.totalChance += item.Chance
			t.count++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	metrics := make([]service.ModelMetrics, 0, len(tallies))
	for _, key := range model.AllModelKeys() {
		t := tallies[string(key)]
		avg := 0
		if t.count > 0 {
			avg = int(math.Round(t.totalChance / float64(t.count)))
		}
		metrics = append(metrics, service.ModelMetrics{
			Model:            string(key),
			TotalPredictions: t.totalItems,
			AverageChance:    avg,
		})
	}

	return metrics, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanPrediction.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (*model.Prediction, error) {
	var p model.Prediction
	var modelKey, itemsJSON string
	var createdAt sql.NullTime

	if err := row.Scan(&p.ID, &p.Date, &modelKey, &p.Category, &itemsJSON, &p.LikesCount, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	p.Model = model.ModelKey(modelKey)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time.UTC()
	} else {
		p.CreatedAt = time.Time{}
	}

	if err := json.Unmarshal([]byte(itemsJSON), &p.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction items: %w", err)
	}

	return &p, nil
}
