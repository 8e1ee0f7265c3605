package history

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordRisk inserts a new risk event.
func (s *Store) RecordRisk(ev *RiskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.VenueID == "" {
		return fmt.Errorf("risk event requires a venue id")
	}

	_, err := s.db.Exec(`
		INSERT INTO risk_events (id, venue_id, event_type, severity, detail, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ev.ID,
		ev.VenueID,
		ev.EventType,
		ev.Severity,
		ev.Detail,
		formatTime(ev.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("insert risk event: %w", err)
	}
	return nil
}

// RecentRisks returns risk events for a venue observed at or after since,
// newest first.
func (s *Store) RecentRisks(venueID string, since time.Time) ([]RiskEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, venue_id, event_type, severity, detail, observed_at
		FROM risk_events
		WHERE venue_id = ? AND observed_at >= ?
		ORDER BY observed_at DESC
	`, venueID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query risk events: %w", err)
	}
	defer rows.Close()

	var events []RiskEvent
	for rows.Next() {
		var (
			ev         RiskEvent
			detail     sql.NullString
			observedAt string
		)
		if err := rows.Scan(&ev.ID, &ev.VenueID, &ev.EventType, &ev.Severity, &detail, &observedAt); err != nil {
			return nil, fmt.Errorf("scan risk event: %w", err)
		}
		ev.Detail = detail.String
		ev.ObservedAt, err = parseTime(observedAt)
		if err != nil {
			return nil, fmt.Errorf("parse observed_at: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RecordPlan inserts the outcome of a completed run.
func (s *Store) RecordPlan(rec *PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RunID == "" {
		return fmt.Errorf("plan record requires a run id")
	}

	_, err := s.db.Exec(`
		INSERT INTO plan_records (run_id, activity, degraded, veto_reason, retries, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Activity,
		boolToInt(rec.Degraded),
		rec.VetoReason,
		rec.Retries,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert plan record: %w", err)
	}
	return nil
}

// RecentPlans returns the most recent plan records, newest first.
func (s *Store) RecentPlans(limit int) ([]PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT run_id, activity, degraded, veto_reason, retries, created_at
		FROM plan_records
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query plan records: %w", err)
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var (
			rec        PlanRecord
			activity   sql.NullString
			vetoReason sql.NullString
			degraded   int
			createdAt  string
		)
		if err := rows.Scan(&rec.RunID, &activity, &degraded, &vetoReason, &rec.Retries, &createdAt); err != nil {
			return nil, fmt.Errorf("scan plan record: %w", err)
		}
		rec.Activity = activity.String
		rec.VetoReason = vetoReason.String
		rec.Degraded = degraded != 0
		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
