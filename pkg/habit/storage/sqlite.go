package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// A lock held longer than this surfaces as a storage error instead
	// of hanging the caller. Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:               "habits.db",
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: 5 * time.Minute,
	}
}

// SQLiteStore implements Store using SQLite for persistence.
// Data survives process restarts: reopening a store on the same path sees
// everything previous instances committed, including the id sequence.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent
// performance and automatic checkpointing to balance write performance
// with durability.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	done   chan struct{}
	logger *slog.Logger

	mu        sync.RWMutex
	closeOnce sync.Once

	// Pre-compiled statements for the hot paths.
	createHabitStmt  *sql.Stmt
	getHabitStmt     *sql.Stmt
	listHabitsStmt   *sql.Stmt
	subhabitIDsStmt  *sql.Stmt
	parentLinksStmt  *sql.Stmt
	createLogStmt    *sql.Stmt
	listLogsStmt     *sql.Stmt
	deleteOldLogStmt *sql.Stmt
}

// SQL shared between prepared statements and transactional paths.
const (
	getHabitSQL = `
		SELECT id, name, description, category, type, goal, parent_id, created_at
		FROM habits
		WHERE id = ?
	`

	updateHabitSQL = `
		UPDATE habits
		SET name = ?, description = ?, category = ?, goal = ?
		WHERE id = ?
	`

	deleteHabitSQL = `
		DELETE FROM habits
		WHERE id = ?
	`

	deleteHabitLogsSQL = `
		DELETE FROM habit_logs
		WHERE habit_id = ?
	`
)

// NewSQLiteStore creates a new SQLite store. It opens the database file,
// initializes the schema, and verifies the schema version. Construction
// fails when the path is unusable, so callers learn about a bad
// configuration at startup rather than on first write.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if config.CheckpointInterval == 0 {
		config.CheckpointInterval = 5 * time.Minute
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		config.Path, int(config.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "open", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		config: config,
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "habit.storage.sqlite"),
	}

	// Initialize schema; doubles as the startup write probe.
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	// Prepare statements
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, habit.NewStorageError(BackendSQLite, "prepare", err)
	}

	// Start background checkpoint goroutine
	go s.checkpointLoop()

	s.logger.Info("SQLite habit store initialized",
		"path", config.Path,
		"schema_version", SchemaVersion,
	)

	return s, nil
}

// initialize creates the schema and records the schema version.
// It is idempotent: initializing an already populated database leaves the
// data untouched.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return habit.NewStorageError(BackendSQLite, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return habit.NewStorageError(BackendSQLite, "record_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return habit.NewStorageError(BackendSQLite, "read_schema_version", err)
	}
	if version != SchemaVersion {
		return habit.NewStorageError(BackendSQLite, "verify_schema_version",
			fmt.Errorf("database has schema version %d, expected %d", version, SchemaVersion))
	}

	return nil
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.createHabitStmt, err = s.db.Prepare(`
		INSERT INTO habits (name, description, category, type, goal, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare create habit statement: %w", err)
	}

	s.getHabitStmt, err = s.db.Prepare(getHabitSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare get habit statement: %w", err)
	}

	s.listHabitsStmt, err = s.db.Prepare(`
		SELECT id, name, description, category, type, goal, parent_id, created_at
		FROM habits
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list habits statement: %w", err)
	}

	s.subhabitIDsStmt, err = s.db.Prepare(`
		SELECT id FROM habits
		WHERE parent_id = ?
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare subhabit ids statement: %w", err)
	}

	s.parentLinksStmt, err = s.db.Prepare(`
		SELECT id, parent_id FROM habits
		WHERE parent_id IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare parent links statement: %w", err)
	}

	s.createLogStmt, err = s.db.Prepare(`
		INSERT INTO habit_logs (habit_id, date, value, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare create log statement: %w", err)
	}

	s.listLogsStmt, err = s.db.Prepare(`
		SELECT id, habit_id, date, value, created_at
		FROM habit_logs
		WHERE habit_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list logs statement: %w", err)
	}

	s.deleteOldLogStmt, err = s.db.Prepare(`
		DELETE FROM habit_logs
		WHERE date < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete old logs statement: %w", err)
	}

	return nil
}

// CreateHabit stores a new habit and returns it with a fresh id.
// Ids come from the AUTOINCREMENT sequence, so they keep growing across
// restarts and are never reassigned after deletion.
func (s *SQLiteStore) CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error) {
	n.Normalize()
	now := time.Now().UTC().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.createHabitStmt.ExecContext(ctx,
		n.Name,
		n.Description,
		n.Category,
		string(n.Type),
		nullFloat(n.Goal),
		nullInt(n.ParentID),
		now.Unix(),
	)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "create_habit", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "create_habit", err)
	}

	h := &habit.Habit{
		ID:          id,
		Name:        n.Name,
		Description: n.Description,
		Category:    n.Category,
		Type:        n.Type,
		SubhabitIDs: []int64{},
		CreatedAt:   now,
	}
	if n.Goal != nil {
		g := *n.Goal
		h.Goal = &g
	}
	if n.ParentID != nil {
		p := *n.ParentID
		h.ParentID = &p
	}

	return h, nil
}

// GetHabit retrieves a habit by id.
func (s *SQLiteStore) GetHabit(ctx context.Context, id int64) (*habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, err := scanHabit(s.getHabitStmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, habit.NotFoundError("habit", id)
	}
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "get_habit", err)
	}

	h.SubhabitIDs, err = s.subhabitIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// ListHabits returns all habits in creation order.
func (s *SQLiteStore) ListHabits(ctx context.Context) ([]*habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listHabitsStmt.QueryContext(ctx)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "list_habits", err)
	}
	defer rows.Close()

	habits := make([]*habit.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, habit.NewStorageError(BackendSQLite, "list_habits", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "list_habits", err)
	}

	// Attach derived subhabit ids with a single pass over parent links.
	links, err := s.parentLinks(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if ids, ok := links[h.ID]; ok {
			h.SubhabitIDs = ids
		}
	}

	return habits, nil
}

// UpdateHabit merges the update into an existing habit. The read-back and
// the write happen in one transaction so a concurrent writer cannot slip
// between them.
func (s *SQLiteStore) UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "update_habit", err)
	}
	defer tx.Rollback()

	h, err := scanHabit(tx.QueryRowContext(ctx, getHabitSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, habit.NotFoundError("habit", id)
	}
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "update_habit", err)
	}

	u.Apply(h)

	_, err = tx.ExecContext(ctx, updateHabitSQL,
		h.Name, h.Description, h.Category, nullFloat(h.Goal), id)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "update_habit", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "update_habit", err)
	}

	h.SubhabitIDs, err = s.subhabitIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// DeleteHabit removes a habit and its log entries atomically.
func (s *SQLiteStore) DeleteHabit(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return habit.NewStorageError(BackendSQLite, "delete_habit", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, deleteHabitSQL, id)
	if err != nil {
		return habit.NewStorageError(BackendSQLite, "delete_habit", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return habit.NewStorageError(BackendSQLite, "delete_habit", err)
	}
	if affected == 0 {
		return habit.NotFoundError("habit", id)
	}

	if _, err := tx.ExecContext(ctx, deleteHabitLogsSQL, id); err != nil {
		return habit.NewStorageError(BackendSQLite, "delete_habit", err)
	}

	if err := tx.Commit(); err != nil {
		return habit.NewStorageError(BackendSQLite, "delete_habit", err)
	}

	return nil
}

// CreateLog stores a new log entry.
func (s *SQLiteStore) CreateLog(ctx context.Context, n habit.NewLog) (*habit.LogEntry, error) {
	now := time.Now().UTC().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.createLogStmt.ExecContext(ctx,
		n.HabitID,
		n.Date,
		nullFloat(n.Value),
		now.Unix(),
	)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "create_log", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "create_log", err)
	}

	entry := &habit.LogEntry{
		ID:        id,
		HabitID:   n.HabitID,
		Date:      n.Date,
		CreatedAt: now,
	}
	if n.Value != nil {
		v := *n.Value
		entry.Value = &v
	}

	return entry, nil
}

// ListLogs returns a habit's log entries in the inclusive date range.
func (s *SQLiteStore) ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error) {
	from, to = normalizeRange(from, to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listLogsStmt.QueryContext(ctx, habitID, from, to)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "list_logs", err)
	}
	defer rows.Close()

	entries := make([]*habit.LogEntry, 0)
	for rows.Next() {
		var (
			entry     habit.LogEntry
			value     sql.NullFloat64
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.HabitID, &entry.Date, &value, &createdAt); err != nil {
			return nil, habit.NewStorageError(BackendSQLite, "list_logs", err)
		}
		if value.Valid {
			v := value.Float64
			entry.Value = &v
		}
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "list_logs", err)
	}

	return entries, nil
}

// DeleteLogsBefore removes log entries dated strictly before the cutoff.
func (s *SQLiteStore) DeleteLogsBefore(ctx context.Context, cutoff string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.deleteOldLogStmt.ExecContext(ctx, cutoff)
	if err != nil {
		return 0, habit.NewStorageError(BackendSQLite, "delete_logs_before", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, habit.NewStorageError(BackendSQLite, "delete_logs_before", err)
	}

	return deleted, nil
}

// Ping reports whether the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return habit.NewStorageError(BackendSQLite, "ping", err)
	}
	return nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		// Signal checkpoint goroutine to stop
		close(s.done)

		// Close prepared statements
		for _, stmt := range []*sql.Stmt{
			s.createHabitStmt,
			s.getHabitStmt,
			s.listHabitsStmt,
			s.subhabitIDsStmt,
			s.parentLinksStmt,
			s.createLogStmt,
			s.listLogsStmt,
			s.deleteOldLogStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}

		// Close database
		if s.db != nil {
			// Run final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// subhabitIDs collects the ids of habits whose parent is id, in creation
// order.
func (s *SQLiteStore) subhabitIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := s.subhabitIDsStmt.QueryContext(ctx, id)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "subhabit_ids", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var childID int64
		if err := rows.Scan(&childID); err != nil {
			return nil, habit.NewStorageError(BackendSQLite, "subhabit_ids", err)
		}
		ids = append(ids, childID)
	}
	if err := rows.Err(); err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "subhabit_ids", err)
	}

	return ids, nil
}

// parentLinks maps parent id to child ids for the whole table.
func (s *SQLiteStore) parentLinks(ctx context.Context) (map[int64][]int64, error) {
	rows, err := s.parentLinksStmt.QueryContext(ctx)
	if err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "parent_links", err)
	}
	defer rows.Close()

	links := make(map[int64][]int64)
	for rows.Next() {
		var childID, parentID int64
		if err := rows.Scan(&childID, &parentID); err != nil {
			return nil, habit.NewStorageError(BackendSQLite, "parent_links", err)
		}
		links[parentID] = append(links[parentID], childID)
	}
	if err := rows.Err(); err != nil {
		return nil, habit.NewStorageError(BackendSQLite, "parent_links", err)
	}

	return links, nil
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.config.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Run checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

// scanner abstracts *sql.Row and *sql.Rows for scanHabit.
type scanner interface {
	Scan(dest ...any) error
}

// scanHabit reads one habits row. SubhabitIDs is left empty for the caller
// to fill in.
func scanHabit(row scanner) (*habit.Habit, error) {
	var (
		h         habit.Habit
		habitType string
		goal      sql.NullFloat64
		parentID  sql.NullInt64
		createdAt int64
	)

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Category, &habitType, &goal, &parentID, &createdAt)
	if err != nil {
		return nil, err
	}

	h.Type = habit.Type(habitType)
	if goal.Valid {
		g := goal.Float64
		h.Goal = &g
	}
	if parentID.Valid {
		p := parentID.Int64
		h.ParentID = &p
	}
	h.SubhabitIDs = []int64{}
	h.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &h, nil
}

// nullFloat converts an optional float to a driver-friendly value.
func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullInt converts an optional int to a driver-friendly value.
func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
