package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medicamenta/adherence-platform/internal/adherence"
	"github.com/medicamenta/adherence-platform/pkg/config"
	"github.com/medicamenta/adherence-platform/pkg/mqtt"
	"github.com/medicamenta/adherence-platform/pkg/postgres"
	"github.com/medicamenta/adherence-platform/pkg/redis"
)

// Agent hosts the analysis engine as a service: it listens for dose events
// and analysis triggers, runs the engine over the lookback window, and fans
// the resulting snapshot out to MQTT, Redis and Postgres. All I/O lives here;
// the engine stays pure.
type Agent struct {
	mqtt    mqtt.Client
	redis   redis.Client
	storage *Storage
	engine  *Engine
	cfg     *config.Config
	logger  *slog.Logger

	// Patients with new dose events since the last periodic pass
	dirty    map[string]struct{}
	dirtyMux sync.Mutex
}

// NewAgent creates the analysis agent and loads the engine tuning config
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, pgClient postgres.Client, cfg *config.Config, logger *slog.Logger) (*Agent, error) {
	engineCfg, err := LoadConfig(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}

	return &Agent{
		mqtt:    mqttClient,
		redis:   redisClient,
		storage: NewStorage(pgClient, logger),
		engine:  NewEngine(engineCfg),
		cfg:     cfg,
		logger:  logger,
		dirty:   make(map[string]struct{}),
	}, nil
}

// Start connects to MQTT, subscribes to the analysis surface and runs the
// periodic analysis loop until the context is cancelled
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting analysis agent",
		"lookback_days", a.cfg.LookbackDays,
		"interval_sec", a.cfg.AnalysisIntervalSec)

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := a.mqtt.Subscribe(mqtt.TopicDoseEvents, 0, a.handleDoseEvent); err != nil {
		return fmt.Errorf("failed to subscribe to dose events: %w", err)
	}
	if err := a.mqtt.Subscribe(mqtt.TopicAnalysisTrigger, 0, a.handleTrigger); err != nil {
		return fmt.Errorf("failed to subscribe to analysis triggers: %w", err)
	}

	go a.runPeriodic(ctx)

	// Block until context cancelled
	<-ctx.Done()
	return nil
}

// Stop disconnects the agent from the broker
func (a *Agent) Stop() error {
	a.logger.Info("Stopping analysis agent")
	a.mqtt.Disconnect()
	return nil
}

// handleDoseEvent records an incoming dose outcome in the patient's Redis
// timeline and marks the patient for the next analysis pass
func (a *Agent) handleDoseEvent(msg mqtt.Message) {
	patientID := mqtt.PatientFromTopic(msg.Topic())
	if patientID == "" {
		a.logger.Warn("Dose event with no patient segment", "topic", msg.Topic())
		return
	}

	var pattern ReminderPattern
	if err := json.Unmarshal(msg.Payload(), &pattern); err != nil {
		a.logger.Warn("Failed to parse dose event",
			"patient", patientID,
			"error", err)
		return
	}
	if pattern.PatientID == "" {
		pattern.PatientID = patientID
	}

	ctx := context.Background()
	key := redis.DoseTimelineKey(patientID)

	if err := a.redis.ZAdd(ctx, key, float64(pattern.Date.UnixMilli()), string(msg.Payload())); err != nil {
		a.logger.Warn("Failed to cache dose event", "patient", patientID, "error", err)
	}

	// Trim timeline entries that fell out of the lookback window
	cutoff := time.Now().Add(-a.cfg.LookbackWindow()).UnixMilli()
	if err := a.redis.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", cutoff)); err != nil {
		a.logger.Warn("Failed to trim dose timeline", "patient", patientID, "error", err)
	}

	a.markDirty(patientID)

	a.logger.Debug("Dose event recorded",
		"patient", patientID,
		"medication", pattern.MedicationID,
		"missed", pattern.Missed)
}

// handleTrigger runs an on-demand analysis for the requested patient
func (a *Agent) handleTrigger(msg mqtt.Message) {
	patientID := mqtt.PatientFromTopic(msg.Topic())
	if patientID == "" {
		a.logger.Warn("Analysis trigger with no patient segment", "topic", msg.Topic())
		return
	}

	a.logger.Info("Analysis triggered", "patient", patientID)

	go func() {
		if err := a.RunAnalysis(context.Background(), patientID); err != nil {
			a.logger.Error("Triggered analysis failed", "patient", patientID, "error", err)
		}
	}()
}

// runPeriodic re-analyzes patients with new dose events on a fixed interval
func (a *Agent) runPeriodic(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(a.cfg.AnalysisIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, patientID := range a.takeDirty() {
				if err := a.RunAnalysis(ctx, patientID); err != nil {
					a.logger.Error("Periodic analysis failed",
						"patient", patientID,
						"error", err)
					// Keep the patient queued so the next pass retries
					a.markDirty(patientID)
				}
			}
		}
	}
}

// RunAnalysis executes one full engine run for a patient and distributes the
// snapshot to all consumers
func (a *Agent) RunAnalysis(ctx context.Context, patientID string) error {
	now := time.Now().UTC()
	from := now.Add(-a.cfg.LookbackWindow())

	patterns, err := a.storage.GetPatterns(ctx, patientID, from, now)
	if err != nil {
		return fmt.Errorf("failed to load patterns: %w", err)
	}

	result := a.engine.Analyze(patientID, patterns, now)

	payload, err := json.Marshal(&result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	if err := a.mqtt.Publish(mqtt.AnalysisResultTopic(patientID), 0, true, payload); err != nil {
		a.logger.Warn("Failed to publish analysis result", "patient", patientID, "error", err)
	}

	ttl := time.Duration(a.cfg.SnapshotTTLHours) * time.Hour
	if err := a.redis.Set(ctx, redis.AnalysisSnapshotKey(patientID), string(payload), ttl); err != nil {
		a.logger.Warn("Failed to cache analysis result", "patient", patientID, "error", err)
	}

	if err := a.storage.SaveSnapshot(ctx, &result); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	a.saveSlotVectors(ctx, patientID, patterns)
	a.publishAdherenceReport(ctx, patientID, patterns, from, now)

	a.logger.Info("Analysis completed",
		"patient", patientID,
		"patterns", len(patterns),
		"skipped", result.Diagnostics.SkippedRecords,
		"score", result.OverallAdherenceScore,
		"trend", result.TrendAnalysis.Trend)

	return nil
}

// saveSlotVectors persists the per-slot behavior feature vectors. Failures
// are logged, not fatal: the vectors are a secondary similarity index.
func (a *Agent) saveSlotVectors(ctx context.Context, patientID string, patterns []ReminderPattern) {
	valid, _ := SanitizePatterns(patterns)

	for _, slot := range groupBySlot(valid) {
		summary := AggregateSlot(slot.Analysis.MedicationID, slot.Analysis.ScheduledTime, slot.Patterns, a.engine.cfg)
		vector := SlotFeatureVector(summary, slot.Patterns)

		if err := a.storage.SaveSlotVector(ctx, patientID, summary, vector); err != nil {
			a.logger.Warn("Failed to save behavior vector",
				"patient", patientID,
				"medication", summary.MedicationID,
				"error", err)
		}
	}
}

// publishAdherenceReport builds the descriptive adherence summary alongside
// the analysis snapshot and distributes it the same way. Failures are logged,
// not fatal: the report is derived data.
func (a *Agent) publishAdherenceReport(ctx context.Context, patientID string, patterns []ReminderPattern, from, to time.Time) {
	valid, _ := SanitizePatterns(patterns)

	records := make([]adherence.DoseRecord, 0, len(valid))
	for _, p := range valid {
		records = append(records, adherence.DoseRecord{
			MedicationID: p.MedicationID,
			Missed:       p.Missed,
			DelayMinutes: p.DelayMinutes,
			Date:         p.Date,
		})
	}

	report := adherence.BuildReport(patientID, records, from, to)

	payload, err := json.Marshal(&report)
	if err != nil {
		a.logger.Warn("Failed to marshal adherence report", "patient", patientID, "error", err)
		return
	}

	if err := a.mqtt.Publish(mqtt.AdherenceReportTopic(patientID), 0, true, payload); err != nil {
		a.logger.Warn("Failed to publish adherence report", "patient", patientID, "error", err)
	}

	ttl := time.Duration(a.cfg.SnapshotTTLHours) * time.Hour
	if err := a.redis.Set(ctx, redis.AdherenceReportKey(patientID), string(payload), ttl); err != nil {
		a.logger.Warn("Failed to cache adherence report", "patient", patientID, "error", err)
	}
}

func (a *Agent) markDirty(patientID string) {
	a.dirtyMux.Lock()
	defer a.dirtyMux.Unlock()
	a.dirty[patientID] = struct{}{}
}

func (a *Agent) takeDirty() []string {
	a.dirtyMux.Lock()
	defer a.dirtyMux.Unlock()

	patients := make([]string, 0, len(a.dirty))
	for patientID := range a.dirty {
		patients = append(patients, patientID)
	}
	a.dirty = make(map[string]struct{})
	return patients
}
