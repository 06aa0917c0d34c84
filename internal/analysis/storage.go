package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/medicamenta/adherence-platform/pkg/postgres"
)

// Storage is the agent's view of the dose event store. The engine itself never
// touches it: patterns are loaded here, handed to the engine as values, and
// the resulting snapshot is persisted here on the engine's behalf.
type Storage struct {
	pg     postgres.Client
	logger *slog.Logger
}

// NewStorage creates a new storage layer on top of a Postgres client
func NewStorage(pg postgres.Client, logger *slog.Logger) *Storage {
	return &Storage{
		pg:     pg,
		logger: logger,
	}
}

// GetPatterns loads a patient's dose outcome records for a bounded date range,
// ordered by event date. Rows are returned as-is; the engine decides what is
// malformed and reports it through Diagnostics.
func (s *Storage) GetPatterns(ctx context.Context, patientID string, from, to time.Time) ([]ReminderPattern, error) {
	query := `
		SELECT id, patient_id, medication_id, scheduled_time,
		       missed, actual_time, delay_minutes, day_of_week, event_date
		FROM dose_events
		WHERE patient_id = $1
		  AND event_date >= $2
		  AND event_date < $3
		ORDER BY event_date ASC
	`

	rows, err := s.pg.Query(ctx, query, patientID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query dose events: %w", err)
	}
	defer rows.Close()

	var patterns []ReminderPattern
	for rows.Next() {
		var p ReminderPattern
		var actualTime sql.NullTime
		var delayMinutes sql.NullFloat64

		if err := rows.Scan(
			&p.ID,
			&p.PatientID,
			&p.MedicationID,
			&p.ScheduledTime,
			&p.Missed,
			&actualTime,
			&delayMinutes,
			&p.DayOfWeek,
			&p.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dose event: %w", err)
		}

		if actualTime.Valid {
			t := actualTime.Time
			p.ActualTime = &t
		}
		if delayMinutes.Valid {
			d := delayMinutes.Float64
			p.DelayMinutes = &d
		}

		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dose events: %w", err)
	}

	s.logger.Debug("Loaded dose events",
		"patient", patientID,
		"count", len(patterns),
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339))

	return patterns, nil
}

// SaveSnapshot persists a completed analysis run. The full snapshot goes into
// a JSONB column so the presentation service can render it without re-joining;
// score, trend and the text lists are lifted into columns for reporting.
func (s *Storage) SaveSnapshot(ctx context.Context, a *AdvancedAnalysis) error {
	snapshotJSON, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis snapshot: %w", err)
	}

	query := `
		INSERT INTO adherence_analyses (
			id, patient_id, analyzed_at, overall_score, trend,
			snapshot, insights, recommendations, skipped_records
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = s.pg.Exec(ctx, query,
		a.ID.String(),
		a.PatientID,
		a.AnalyzedAt,
		a.OverallAdherenceScore,
		string(a.TrendAnalysis.Trend),
		snapshotJSON,
		pq.Array(a.Insights),
		pq.Array(a.Recommendations),
		a.Diagnostics.SkippedRecords,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis snapshot: %w", err)
	}

	s.logger.Info("Analysis snapshot saved",
		"id", a.ID,
		"patient", a.PatientID,
		"score", a.OverallAdherenceScore,
		"predictions", len(a.Predictions))

	return nil
}

// SaveSlotVector upserts the behavior feature vector for one
// medication+scheduled-time slot. Other services run pgvector similarity
// queries against these to find patients with comparable adherence behavior.
func (s *Storage) SaveSlotVector(ctx context.Context, patientID string, slot PatternAnalysis, vector pgvector.Vector) error {
	query := `
		INSERT INTO behavior_vectors (
			id, patient_id, medication_id, scheduled_time, features, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (patient_id, medication_id, scheduled_time)
		DO UPDATE SET features = EXCLUDED.features, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pg.Exec(ctx, query,
		uuid.New().String(),
		patientID,
		slot.MedicationID,
		slot.ScheduledTime,
		vector,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert behavior vector: %w", err)
	}

	return nil
}
