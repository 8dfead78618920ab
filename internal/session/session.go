// Package session holds the state of one interactive xlsql session: the
// engine and catalog, the SQL editor buffer with its highlighting, the
// current query result and a transient status message.
//
// Every user action runs inside a boundary that turns errors and panics into
// a status message, so no action can terminate the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/xlsql/xlsql"
	"github.com/xlsql/xlsql/domain/model"
	"github.com/xlsql/xlsql/highlight"
)

var (
	// ErrUnknownAction indicates an action id that is not offered for the node kind
	ErrUnknownAction = errors.New("session: unknown action")
	// ErrNoTarget indicates that the node does not belong to an imported file
	ErrNoTarget = errors.New("session: select a node of the target file first")
	// ErrActionPanicked indicates an action that panicked and was recovered
	ErrActionPanicked = errors.New("session: action panicked")
)

// Session is one interactive session. It is not safe for concurrent use,
// except for its Highlighter.
type Session struct {
	catalog     *xlsql.Catalog
	highlighter *highlight.Highlighter
	logger      *slog.Logger
	opener      Opener

	sql    string
	ranges []highlight.Range
	result *model.QueryResult

	status    string
	statusErr bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOpener sets how files are revealed in the file manager.
func WithOpener(opener Opener) Option {
	return func(s *Session) {
		if opener != nil {
			s.opener = opener
		}
	}
}

// New opens a session with a fresh in-memory engine. Close releases it.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	s := &Session{
		highlighter: highlight.New(),
		logger:      slog.New(slog.DiscardHandler),
		opener:      SystemOpener,
	}
	for _, opt := range opts {
		opt(s)
	}

	catalog, err := xlsql.Open(ctx, xlsql.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	s.catalog = catalog
	return s, nil
}

// Close releases the engine. The session must not be used afterwards.
func (s *Session) Close() error {
	return s.catalog.Close()
}

// Catalog returns the session catalog.
func (s *Session) Catalog() *xlsql.Catalog {
	return s.catalog
}

// Tree returns the catalog tree.
func (s *Session) Tree() *model.Tree {
	return s.catalog.Tree()
}

// Highlighter returns the highlighter kept in sync with the catalog.
func (s *Session) Highlighter() *highlight.Highlighter {
	return s.highlighter
}

// SQL returns the editor text.
func (s *Session) SQL() string {
	return s.sql
}

// Ranges returns the style ranges of the editor text.
func (s *Session) Ranges() []highlight.Range {
	return s.ranges
}

// Result returns the current query result, nil when there is none.
func (s *Session) Result() *model.QueryResult {
	return s.result
}

// Status returns the transient status message and whether it reports a failure.
func (s *Session) Status() (string, bool) {
	return s.status, s.statusErr
}

// SetSQL replaces the editor text.
func (s *Session) SetSQL(text string) {
	s.sql = text
	s.rehighlight()
}

// InsertText inserts text at the caret, which sits at the end of the editor text.
func (s *Session) InsertText(text string) {
	s.SetSQL(s.sql + text)
}

// Format reformats the editor text.
func (s *Session) Format() {
	s.SetSQL(highlight.Format(s.sql))
	s.setStatus("SQL formatted")
}

func (s *Session) rehighlight() {
	s.ranges = s.highlighter.Highlight(s.sql)
}

// refreshKnownTables syncs the highlighter with the engine tables.
func (s *Session) refreshKnownTables(ctx context.Context) {
	names, err := s.catalog.ListTableNames(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list tables", "error", err)
		return
	}
	s.highlighter.SetKnownTables(names)
	s.rehighlight()
}

func (s *Session) setStatus(format string, args ...any) {
	s.status = fmt.Sprintf(format, args...)
	s.statusErr = false
}

func (s *Session) setError(err error) {
	s.status = err.Error()
	s.statusErr = true
}

// guard runs fn as the action name. Errors and panics are logged and become
// the status message; they are also returned so callers can react.
func (s *Session) guard(ctx context.Context, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrActionPanicked, name, r)
			s.logger.ErrorContext(ctx, "action panicked",
				"action", name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
		if err != nil {
			if !errors.Is(err, ErrActionPanicked) {
				s.logger.WarnContext(ctx, "action failed", "action", name, "error", err)
			}
			s.setError(err)
		}
	}()
	return fn()
}

// Import imports the file at path.
func (s *Session) Import(ctx context.Context, path string) error {
	return s.guard(ctx, "import", func() error {
		start := time.Now()
		file, err := s.catalog.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		s.refreshKnownTables(ctx)
		s.setStatus("Imported %s as %s in %.2fs", path, strings.Join(file.TableNames(), ", "), time.Since(start).Seconds())
		return nil
	})
}

// Run executes the editor text. The current result is replaced only when
// the query succeeds.
func (s *Session) Run(ctx context.Context) error {
	return s.guard(ctx, "run", func() error {
		return s.runQuery(ctx, s.sql)
	})
}

func (s *Session) runQuery(ctx context.Context, sql string) error {
	start := time.Now()
	result, err := s.catalog.RunQuery(ctx, sql)
	if err != nil {
		return err
	}
	s.result = result
	s.refreshKnownTables(ctx)

	if result.Empty() {
		s.setStatus("Statement executed, no result set")
		return nil
	}
	s.setStatus("Query returned %d row(s) in %.2fs", result.Len(), time.Since(start).Seconds())
	return nil
}

// Export appends the current result as sheet name to the file n belongs to.
func (s *Session) Export(ctx context.Context, n *model.Node, name string) error {
	return s.guard(ctx, "export", func() error {
		file, ok := s.catalog.FileForNode(n)
		if !ok {
			return ErrNoTarget
		}
		if _, err := s.catalog.ExportResultAsTable(ctx, s.result, file, name); err != nil {
			return err
		}
		s.refreshKnownTables(ctx)
		s.setStatus("Exported result to %s as sheet [%s]", file.Path, name)
		return nil
	})
}

// ShowTable runs a query over every row of the table of a Sheet or Field node.
func (s *Session) ShowTable(ctx context.Context, n *model.Node) error {
	return s.guard(ctx, string(ActionShowData), func() error {
		return showData(ctx, s, n)
	})
}

// Dispatch runs the action id on node n through the action table.
func (s *Session) Dispatch(ctx context.Context, n *model.Node, id ActionID) error {
	return s.guard(ctx, string(id), func() error {
		if n == nil {
			return ErrNoTarget
		}
		action, err := lookupAction(n.Kind, id)
		if err != nil {
			return err
		}
		return action.handler(ctx, s, n)
	})
}

// displayPath shortens path for status messages.
func displayPath(path string) string {
	return filepath.Base(path)
}
