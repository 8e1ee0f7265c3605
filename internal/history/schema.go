package history

// Migrate creates the necessary tables and indexes if they don't exist.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history_schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM history_schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1RiskEvents},
		{2, migrationV2PlanRecords},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return err
		}

		if _, err := tx.Exec("INSERT INTO history_schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

const migrationV1RiskEvents = `
CREATE TABLE IF NOT EXISTS risk_events (
	id TEXT PRIMARY KEY,
	venue_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	detail TEXT,
	observed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_risk_events_venue ON risk_events(venue_id, observed_at);
`

const migrationV2PlanRecords = `
CREATE TABLE IF NOT EXISTS plan_records (
	run_id TEXT PRIMARY KEY,
	activity TEXT,
	degraded INTEGER NOT NULL DEFAULT 0,
	veto_reason TEXT,
	retries INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
`
