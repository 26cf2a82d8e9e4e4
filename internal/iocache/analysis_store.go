package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// Table names for run tracking.
const (
	analysisRunsTable = "hotspot_analysis_runs"
	hotspotsTable     = "hotspot_entries"
)

// analysisTables lists every tracking table, parents first.
var analysisTables = []string{analysisRunsTable, hotspotsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file location is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// openDB opens a handle for backend without checking connectivity.
// An empty SQLite connection string means the default file in $HOME.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetAnalysisDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createAnalysisTables creates the run tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{hotspotsTable, getCreateHotspotsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for hotspot_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repo_path VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				commits_visited INT,
				commits_kept INT,
				files_ranked INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				repo_path TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				commits_visited INT,
				commits_kept INT,
				files_ranked INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo_path TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				commits_visited INTEGER,
				commits_kept INTEGER,
				files_ranked INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateHotspotsQuery returns the CREATE TABLE query for hotspot_entries.
func getCreateHotspotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(hotspotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				%s INT NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				change_count INT NOT NULL,
				author_count INT NOT NULL,
				score DOUBLE NOT NULL,
				main_contributor VARCHAR(255),
				first_changed_at DATETIME(6) NOT NULL,
				last_changed_at DATETIME(6) NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName, "`rank`")

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				rank INT NOT NULL,
				file_path TEXT NOT NULL,
				change_count INT NOT NULL,
				author_count INT NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				main_contributor TEXT,
				first_changed_at TIMESTAMPTZ NOT NULL,
				last_changed_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				rank INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				change_count INTEGER NOT NULL,
				author_count INTEGER NOT NULL,
				score REAL NOT NULL,
				main_contributor TEXT,
				first_changed_at TEXT NOT NULL,
				last_changed_at TEXT NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName)
	}
}

// rankColumn is "rank" quoted for the backend; it is a reserved word in MySQL 8.
func rankColumn(backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`rank`"
	}
	return "rank"
}

// placeholders returns n bind parameters in the style of the backend.
func placeholders(backend schema.DatabaseBackend, n int) []any {
	out := make([]any, n)
	for i := range n {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, repoPath string, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, repoPath, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, repoPath, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return analysisID, nil
}

// RecordHotspots stores the ranked entries of a run in a single transaction.
func (as *AnalysisStoreImpl) RecordHotspots(analysisID int64, entries []schema.HotspotEntry) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(entries) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, %s, file_path, change_count, author_count,
		                score, main_contributor, first_changed_at, last_changed_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quoteTableName(hotspotsTable, as.backend), rankColumn(as.backend)}, placeholders(as.backend, 9)...)...)

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare hotspot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		var owner *string
		if e.MainContributor != "" {
			owner = &e.MainContributor
		}
		if _, err := stmt.Exec(
			analysisID, e.Rank, e.Path, e.ChangeCount, e.AuthorCount, e.Score, owner,
			formatTime(e.FirstChangedAt, as.backend), formatTime(e.LastChangedAt, as.backend),
		); err != nil {
			return fmt.Errorf("failed to insert hotspot %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hotspots: %w", err)
	}
	return nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	// The start_time is read back to compute the duration
	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = ?`, quotedTableName)
	}

	startTime, err := as.scanTime(as.db.QueryRow(query, analysisID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	ph := placeholders(as.backend, 6)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, commits_visited = %s, commits_kept = %s, files_ranked = %s WHERE analysis_id = %s`,
		append([]any{quotedTableName}, ph...)...)
	args := []any{
		formatTime(endTime, as.backend), durationMs,
		summary.CommitsVisited, summary.CommitsKept, summary.FilesRanked, analysisID,
	}

	if _, err := as.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)

	row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = as.db.QueryRow(fmt.Sprintf("SELECT analysis_id FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		status.LastRunTime, err = as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}

		status.OldestRunTime, err = as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(files_ranked), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalFilesRanked); err != nil {
			return status, fmt.Errorf("failed to get total files ranked: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		row = as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, repo_path, start_time, end_time, run_duration_ms,
		commits_visited, commits_kept, files_ranked, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start := as.timeDest()
		end := as.nullTimeDest()
		if err := rows.Scan(&record.AnalysisID, &record.RepoPath, start.dest, end.dest, &record.RunDurationMs,
			&record.CommitsVisited, &record.CommitsKept, &record.FilesRanked, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = start.value(); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}

	return results, nil
}

// GetAllHotspotRecords retrieves every stored entry ordered by run and rank.
func (as *AnalysisStoreImpl) GetAllHotspotRecords() ([]schema.HotspotRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	rank := rankColumn(as.backend)
	query := fmt.Sprintf(`SELECT analysis_id, %s, file_path, change_count, author_count,
		score, main_contributor, first_changed_at, last_changed_at
		FROM %s ORDER BY analysis_id, %s`, rank, quoteTableName(hotspotsTable, as.backend), rank)

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotspots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HotspotRecord
	for rows.Next() {
		var record schema.HotspotRecord
		first := as.timeDest()
		last := as.timeDest()
		if err := rows.Scan(&record.AnalysisID, &record.Rank, &record.FilePath, &record.ChangeCount,
			&record.AuthorCount, &record.Score, &record.MainContributor, first.dest, last.dest); err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		if record.FirstChangedAt, err = first.value(); err != nil {
			return nil, fmt.Errorf("failed to parse first_changed_at: %w", err)
		}
		if record.LastChangedAt, err = last.value(); err != nil {
			return nil, fmt.Errorf("failed to parse last_changed_at: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotspots: %w", err)
	}

	return results, nil
}

// scanTime reads a single time column, which SQLite stores as text.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	d := as.timeDest()
	if err := row.Scan(d.dest); err != nil {
		return time.Time{}, err
	}
	return d.value()
}

// timeColumn is a scan destination for a NOT NULL time column.
type timeColumn struct {
	dest  any
	value func() (time.Time, error)
}

// nullTimeColumn is a scan destination for a nullable time column.
type nullTimeColumn struct {
	dest  any
	value func() (*time.Time, error)
}

func (as *AnalysisStoreImpl) timeDest() timeColumn {
	if as.backend == schema.SQLiteBackend {
		var s string
		return timeColumn{dest: &s, value: func() (time.Time, error) {
			return time.Parse(time.RFC3339Nano, s)
		}}
	}
	// MySQL and PostgreSQL store as native datetime
	var t time.Time
	return timeColumn{dest: &t, value: func() (time.Time, error) { return t, nil }}
}

func (as *AnalysisStoreImpl) nullTimeDest() nullTimeColumn {
	if as.backend == schema.SQLiteBackend {
		var s *string
		return nullTimeColumn{dest: &s, value: func() (*time.Time, error) {
			if s == nil {
				return nil, nil
			}
			t, err := time.Parse(time.RFC3339Nano, *s)
			if err != nil {
				return nil, err
			}
			return &t, nil
		}}
	}
	var t *time.Time
	return nullTimeColumn{dest: &t, value: func() (*time.Time, error) { return t, nil }}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}
