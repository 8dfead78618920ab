package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xlsql/xlsql/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	// DriverName is the database/sql driver name of the embedded engine
	DriverName = "sqlite"
	// memoryDSN opens a private in-memory database
	memoryDSN = ":memory:"
	// maxVariables is SQLite's default limit of host parameters per statement
	maxVariables = 32766
	// DefaultRowsPerChunk is the default number of rows per INSERT statement
	DefaultRowsPerChunk = 1000
)

// Engine is the owned in-memory SQL engine.
type Engine struct {
	db           *sql.DB
	logger       *slog.Logger
	rowsPerChunk int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for statement-level debug logs.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRowsPerChunk sets how many rows go into one INSERT statement.
func WithRowsPerChunk(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.rowsPerChunk = n
		}
	}
}

// Open creates a fresh in-memory engine.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	db, err := sql.Open(DriverName, memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	// Every connection to :memory: is a separate database; keep exactly one alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an already opened database. Open is the normal entry point;
// New exists so tests can inject a mocked *sql.DB.
func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{
		db:           db,
		logger:       slog.New(slog.DiscardHandler),
		rowsPerChunk: DefaultRowsPerChunk,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the connection and with it every table.
func (e *Engine) Close() error {
	if e.db == nil {
		return ErrClosed
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// QuoteIdent quotes an identifier for use in engine statements.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tx is a unit of catalog work that commits or rolls back as a whole.
type Tx struct {
	tx     *sql.Tx
	engine *Engine
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (e *Engine) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	if e.db == nil {
		return ErrClosed
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Tx{tx: tx, engine: e}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (also failed to roll back: %w)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateTable creates table name with the given columns.
func (t *Tx) CreateTable(ctx context.Context, name string, columns []model.Column) error {
	return t.engine.createTable(ctx, t.tx, name, columns)
}

// InsertRows bulk-inserts rows into table name.
func (t *Tx) InsertRows(ctx context.Context, name string, width int, rows [][]any) error {
	return t.engine.insertRows(ctx, t.tx, name, width, rows)
}

// createTable runs CREATE TABLE on ex.
func (e *Engine) createTable(ctx context.Context, ex execer, name string, columns []model.Column) error {
	query, err := buildCreateTableQuery(name, columns)
	if err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "create table", "table", name, "columns", len(columns))
	if _, err := ex.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// buildCreateTableQuery constructs a CREATE TABLE query for the given table
func buildCreateTableQuery(name string, columns []model.Column) (string, error) {
	if name == "" {
		return "", ErrEmptyTableName
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, fmt.Sprintf("%s %s", QuoteIdent(col.Name), col.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(name), strings.Join(defs, ", ")), nil
}

// insertRows inserts rows in chunks of multi-row INSERT statements.
func (e *Engine) insertRows(ctx context.Context, ex execer, name string, width int, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if width <= 0 {
		return ErrNoColumns
	}

	chunkSize := e.rowsPerChunk
	if limit := maxVariables / width; chunkSize > limit {
		chunkSize = max(limit, 1)
	}

	queries := make(map[int]string)
	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		chunk := rows[start:end]

		query, ok := queries[len(chunk)]
		if !ok {
			query = buildInsertQuery(name, width, len(chunk))
			queries[len(chunk)] = query
		}

		args := make([]any, 0, len(chunk)*width)
		for _, row := range chunk {
			if len(row) != width {
				return fmt.Errorf("%w: table %s expects %d values, got %d", ErrRowWidth, name, width, len(row))
			}
			args = append(args, row...)
		}
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}
	e.logger.DebugContext(ctx, "inserted rows", "table", name, "rows", len(rows))
	return nil
}

// buildInsertQuery constructs an INSERT query with rowCount value groups
func buildInsertQuery(name string, width, rowCount int) string {
	group := "(" + buildPlaceholders(width) + ")"
	groups := make([]string, rowCount)
	for i := range groups {
		groups[i] = group
	}
	return fmt.Sprintf("INSERT INTO %s VALUES %s", QuoteIdent(name), strings.Join(groups, ", "))
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.Repeat("?, ", count-1) + "?"
}

// DropTable drops table name. Dropping a table that no longer exists is not an error.
func (e *Engine) DropTable(ctx context.Context, name string) error {
	if e.db == nil {
		return ErrClosed
	}
	if name == "" {
		return ErrEmptyTableName
	}
	e.logger.DebugContext(ctx, "drop table", "table", name)
	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	return nil
}

// TableNames returns every user table in creation order.
func (e *Engine) TableNames(ctx context.Context) ([]string, error) {
	if e.db == nil {
		return nil, ErrClosed
	}
	rows, err := e.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// TableColumns retrieves column names for a specific table
func (e *Engine) TableColumns(ctx context.Context, name string) ([]string, error) {
	if e.db == nil {
		return nil, ErrClosed
	}
	rows, err := e.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", name)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", name, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// Query runs free-form SQL. Statements without a result set yield a
// QueryResult with no columns.
func (e *Engine) Query(ctx context.Context, query string) (*model.QueryResult, error) {
	if e.db == nil {
		return nil, ErrClosed
	}
	e.logger.DebugContext(ctx, "query", "sql", query)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &model.QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// Convert []byte to string for readability
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
