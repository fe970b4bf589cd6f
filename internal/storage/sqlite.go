// Package storage provides SQLite-based persistence for simulation runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/towerdefense/internal/simulation"
)

// timeLayout sorts lexically in the same order as time.
const timeLayout = "2006-01-02 15:04:05.000"

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one finished simulation.
type Run struct {
	ID         string    `json:"id"` // UUID, assigned by SaveRun when empty
	Scenario   string    `json:"scenario"`
	Strategy   string    `json:"strategy"`
	Seed       int64     `json:"seed"`
	Outcome    string    `json:"outcome"` // "victory", "game_over", "max_ticks", "cancelled"
	Success    bool      `json:"success"`
	FinalMoney int       `json:"final_money"`
	FinalLives int       `json:"final_lives"`
	FinalRound int       `json:"final_round"`
	Score      int       `json:"score"`
	Ticks      int       `json:"ticks"`
	Duration   float64   `json:"duration"` // simulated seconds
	CreatedAt  time.Time `json:"created_at"`
}

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("storage: run not found")

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			final_money INTEGER NOT NULL DEFAULT 0,
			final_lives INTEGER NOT NULL DEFAULT 0,
			final_round INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			duration REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario_score ON runs(scenario, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and returns its ID.
func (s *Store) SaveRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if _, err := uuid.Parse(r.ID); err != nil {
		return "", fmt.Errorf("storage: invalid run id %q: %w", r.ID, err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs
		 (id, scenario, strategy, seed, outcome, success, final_money, final_lives, final_round, score, ticks, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Scenario,
		r.Strategy,
		r.Seed,
		r.Outcome,
		r.Success,
		r.FinalMoney,
		r.FinalLives,
		r.FinalRound,
		r.Score,
		r.Ticks,
		r.Duration,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.ID, nil
}

const runColumns = `id, scenario, strategy, seed, outcome, success, final_money,
	final_lives, final_round, score, ticks, duration, created_at`

// RunByID retrieves a run, or ErrNotFound.
func (s *Store) RunByID(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return r, nil
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
}

// BestRuns returns the highest scoring runs of a scenario.
func (s *Store) BestRuns(scenario string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT `+runColumns+` FROM runs WHERE scenario = ? ORDER BY score DESC, created_at LIMIT ?`,
		scenario, limit,
	)
}

// Stats summarises the runs of a scenario.
type Stats struct {
	Runs      int
	Victories int
	BestScore int
	AvgLives  float64
}

// ScenarioStats aggregates the stored runs of a scenario.
func (s *Store) ScenarioStats(scenario string) (Stats, error) {
	var st Stats
	var best sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(success), 0), MAX(score), AVG(final_lives)
		 FROM runs WHERE scenario = ?`,
		scenario,
	).Scan(&st.Runs, &st.Victories, &best, &avg)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	st.BestScore = int(best.Int64)
	st.AvgLives = avg.Float64
	return st, nil
}

// ClearRuns deletes the runs of a scenario, or all runs when scenario is "".
func (s *Store) ClearRuns(scenario string) error {
	var err error
	if scenario == "" {
		_, err = s.db.Exec("DELETE FROM runs")
	} else {
		_, err = s.db.Exec("DELETE FROM runs WHERE scenario = ?", scenario)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var createdAt string
	err := sc.Scan(
		&r.ID,
		&r.Scenario,
		&r.Strategy,
		&r.Seed,
		&r.Outcome,
		&r.Success,
		&r.FinalMoney,
		&r.FinalLives,
		&r.FinalRound,
		&r.Score,
		&r.Ticks,
		&r.Duration,
		&createdAt,
	)
	if err != nil {
		return r, err
	}
	if parsed, err := time.Parse(timeLayout, createdAt); err == nil {
		r.CreatedAt = parsed
	}
	return r, nil
}

// RunFromResult converts a simulation result into a storable run.
func RunFromResult(scenario, strategyName string, seed int64, res simulation.Result) Run {
	return Run{
		Scenario:   scenario,
		Strategy:   strategyName,
		Seed:       seed,
		Outcome:    string(res.Outcome),
		Success:    res.Success,
		FinalMoney: res.FinalMoney,
		FinalLives: res.FinalLives,
		FinalRound: res.FinalRound,
		Score:      res.Score,
		Ticks:      res.Ticks,
		Duration:   res.Duration,
	}
}
