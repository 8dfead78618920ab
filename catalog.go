package xlsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xlsql/xlsql/domain/model"
	"github.com/xlsql/xlsql/engine"
)

// Catalog maps imported files to engine tables and mirrors the mapping in a tree.
//
// Every mutation is executed against the engine first; the catalog and its
// tree are only updated once the engine statements succeeded, so a failed
// operation leaves both untouched.
type Catalog struct {
	engine     *engine.Engine
	ownsEngine bool
	logger     *slog.Logger
	validator  *validator

	tree  *model.Tree
	files []*model.File

	fileNodes  map[*model.File]*model.Node
	tableNodes map[*model.Table]*model.Node
	nodeFiles  map[*model.Node]*model.File
	nodeTables map[*model.Node]*model.Table
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the logger used by the catalog.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog creates an empty catalog backed by eng. The caller keeps ownership of eng.
func NewCatalog(eng *engine.Engine, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		engine:     eng,
		logger:     slog.New(slog.DiscardHandler),
		validator:  newValidator(),
		tree:       model.NewTree(),
		fileNodes:  make(map[*model.File]*model.Node),
		tableNodes: make(map[*model.Table]*model.Node),
		nodeFiles:  make(map[*model.Node]*model.File),
		nodeTables: make(map[*model.Node]*model.Table),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens a fresh in-memory engine and returns a catalog that owns it.
// Close releases the engine.
func Open(ctx context.Context, opts ...CatalogOption) (*Catalog, error) {
	c := NewCatalog(nil, opts...)
	eng, err := engine.Open(ctx, engine.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.engine = eng
	c.ownsEngine = true
	return c, nil
}

// Close releases the engine when the catalog owns it.
func (c *Catalog) Close() error {
	if !c.ownsEngine {
		return nil
	}
	return c.engine.Close()
}

// Engine returns the backing engine.
func (c *Catalog) Engine() *engine.Engine {
	return c.engine
}

// Tree returns the tree mirroring the catalog.
func (c *Catalog) Tree() *model.Tree {
	return c.tree
}

// Files returns the imported files in import order.
func (c *Catalog) Files() []*model.File {
	return append([]*model.File(nil), c.files...)
}

// Tables returns every catalog table, file by file, in creation order.
func (c *Catalog) Tables() []*model.Table {
	var tables []*model.Table
	for _, f := range c.files {
		tables = append(tables, f.Tables...)
	}
	return tables
}

// LookupTable finds a catalog table by name, case-insensitively.
func (c *Catalog) LookupTable(name string) (*model.Table, bool) {
	key := foldName(name)
	for _, t := range c.Tables() {
		if foldName(t.Name) == key {
			return t, true
		}
	}
	return nil, false
}

// LookupFile finds an imported file by path or display name.
// When several files match, the earliest import wins.
func (c *Catalog) LookupFile(ref string) (*model.File, bool) {
	for _, f := range c.files {
		if f.Path == ref {
			return f, true
		}
	}
	for _, f := range c.files {
		if f.Name == ref || f.Name+f.Ext == ref {
			return f, true
		}
	}
	return nil, false
}

// FileForNode returns the file a node belongs to. Sheet and Field nodes resolve to their owning file.
func (c *Catalog) FileForNode(n *model.Node) (*model.File, bool) {
	f, ok := c.nodeFiles[model.FileOf(n)]
	return f, ok
}

// TableForNode returns the table of a Sheet node, or of the parent of a Field node.
func (c *Catalog) TableForNode(n *model.Node) (*model.Table, bool) {
	if n != nil && n.Kind == model.NodeKindField {
		n = n.Parent
	}
	t, ok := c.nodeTables[n]
	return t, ok
}

// NodeForTable returns the Sheet node of a catalog table.
func (c *Catalog) NodeForTable(t *model.Table) (*model.Node, bool) {
	n, ok := c.tableNodes[t]
	return n, ok
}

// NodeForFile returns the File node of an imported file.
func (c *Catalog) NodeForFile(f *model.File) (*model.Node, bool) {
	n, ok := c.fileNodes[f]
	return n, ok
}

// ImportFile reads every sheet of the file at path and materializes one table per
// non-empty sheet, in the file's sheet order. Table names start from the sheet
// name and get "_1", "_2", ... suffixes on collision. On any failure nothing is
// committed and an *ImportError is returned.
func (c *Catalog) ImportFile(ctx context.Context, path string) (*model.File, error) {
	start := time.Now()
	if err := c.validator.validatePath(path); err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	sheets, err := newFile(path).readSheets(ctx)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	existing, err := c.engine.TableNames(ctx)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	taken := newNameSet(existing)

	var tables []*model.Table
	err = c.engine.InTx(ctx, func(tx *engine.Tx) error {
		for _, s := range sheets {
			if s.isEmpty() {
				c.logger.WarnContext(ctx, "skipping empty sheet", "path", path, "sheet", s.name)
				continue
			}
			name := taken.unique(s.name)
			header := s.header()
			table := model.NewTable(name, header.Columns())
			errCtx := NewErrorContext("materialize sheet", "").WithTable(name)

			if err := tx.CreateTable(ctx, name, table.Columns); err != nil {
				return errCtx.Error(err)
			}
			if err := tx.InsertRows(ctx, name, len(header), s.records(len(header))); err != nil {
				return errCtx.WithDetails(fmt.Sprintf("sheet %s", s.name)).Error(err)
			}
			taken.add(name)
			tables = append(tables, table)
		}
		if len(tables) == 0 {
			return fmt.Errorf("%w: no sheet has a header row", ErrEmptyData)
		}
		return nil
	})
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	file := model.NewFile(path)
	fileNode := c.attachFile(file)
	for _, t := range tables {
		c.attachTable(file, fileNode, t)
	}

	c.logger.InfoContext(ctx, "imported file",
		"path", path,
		"tables", file.TableNames(),
		"duration", time.Since(start),
	)
	return file, nil
}

// RemoveTable drops the table from the engine and removes its Sheet node.
// Removing the last table of a file removes the file as well.
func (c *Catalog) RemoveTable(ctx context.Context, t *model.Table) error {
	if _, ok := c.tableNodes[t]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableName(t))
	}
	if err := c.engine.DropTable(ctx, t.Name); err != nil {
		return NewErrorContext("remove table", "").WithTable(t.Name).Error(err)
	}
	c.detachTable(t)
	c.logger.InfoContext(ctx, "removed table", "table", t.Name)
	return nil
}

// RemoveFile removes every table owned by f, then the file itself.
// Tables of other files are left untouched.
func (c *Catalog) RemoveFile(ctx context.Context, f *model.File) error {
	if _, ok := c.fileNodes[f]; !ok {
		return ErrFileNotInCatalog
	}
	for _, t := range append([]*model.Table(nil), f.Tables...) {
		if err := c.RemoveTable(ctx, t); err != nil {
			return err
		}
	}
	// a file without tables is not removed by RemoveTable
	if _, ok := c.fileNodes[f]; ok {
		c.detachFile(f)
	}
	c.logger.InfoContext(ctx, "removed file", "path", f.Path)
	return nil
}

// ListTableNames returns the names of all tables in the engine in creation order,
// including tables created by ad-hoc SQL.
func (c *Catalog) ListTableNames(ctx context.Context) ([]string, error) {
	return c.engine.TableNames(ctx)
}

// RunQuery executes sql and returns its result. Statements without a result
// set return an empty result. Catalog tables dropped by the statement are
// pruned afterwards.
func (c *Catalog) RunQuery(ctx context.Context, sql string) (*model.QueryResult, error) {
	query := strings.TrimSpace(sql)
	if query == "" {
		return nil, &QueryError{Query: sql, Err: ErrEmptyQuery}
	}

	start := time.Now()
	result, err := c.engine.Query(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	c.logger.DebugContext(ctx, "query executed", "rows", result.Len(), "duration", time.Since(start))

	if err := c.Reconcile(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to reconcile catalog", "error", err)
	}
	return result, nil
}

// TableData returns every row of a catalog table.
func (c *Catalog) TableData(ctx context.Context, t *model.Table) (*model.QueryResult, error) {
	if _, ok := c.tableNodes[t]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName(t))
	}
	return c.RunQuery(ctx, "SELECT * FROM "+engine.QuoteIdent(t.Name))
}

// Reconcile removes catalog tables that no longer exist in the engine.
func (c *Catalog) Reconcile(ctx context.Context) error {
	names, err := c.engine.TableNames(ctx)
	if err != nil {
		return err
	}
	live := make(map[string]struct{}, len(names))
	for _, name := range names {
		live[name] = struct{}{}
	}
	for _, t := range c.Tables() {
		if _, ok := live[t.Name]; !ok {
			c.logger.InfoContext(ctx, "table dropped outside the catalog", "table", t.Name)
			c.detachTable(t)
		}
	}
	return nil
}

// ExportResultAsTable appends result as a new sheet named name to the workbook of f,
// then materializes it as a table under f. Validation failures return an
// *ExportValidationError and write failures an *ExportIOError; in both cases
// the catalog is unchanged.
func (c *Catalog) ExportResultAsTable(ctx context.Context, result *model.QueryResult, f *model.File, name string) (*model.Table, error) {
	if result.Empty() {
		return nil, &ExportValidationError{Name: name, Rule: RuleNoResult, Reason: "there is no query result to export"}
	}
	fileNode, ok := c.fileNodes[f]
	if !ok {
		return nil, ErrFileNotInCatalog
	}

	existing, err := c.engine.TableNames(ctx)
	if err != nil {
		return nil, &ExportIOError{Path: f.Path, Err: err}
	}
	if err := c.validator.validateSheetName(name, existing); err != nil {
		return nil, err
	}
	if !newFile(f.Path).isWritableWorkbook() {
		return nil, &ExportIOError{Path: f.Path, Err: ErrUnsupportedExportTarget}
	}

	header := normalizeHeader(result.Columns, len(result.Columns))
	if err := appendSheet(f.Path, name, header, result); err != nil {
		return nil, err
	}

	table := model.NewTable(name, header.Columns())
	err = c.engine.InTx(ctx, func(tx *engine.Tx) error {
		if err := tx.CreateTable(ctx, name, table.Columns); err != nil {
			return err
		}
		return tx.InsertRows(ctx, name, len(header), textRows(result))
	})
	if err != nil {
		return nil, &ExportIOError{Path: f.Path, Err: fmt.Errorf("sheet %s was written but its table could not be created: %w", name, err)}
	}

	c.attachTable(f, fileNode, table)
	c.logger.InfoContext(ctx, "exported result", "path", f.Path, "sheet", name, "rows", result.Len())
	return table, nil
}

func (c *Catalog) attachFile(f *model.File) *model.Node {
	n := c.tree.AddFile(model.NewFileNode(f))
	c.files = append(c.files, f)
	c.fileNodes[f] = n
	c.nodeFiles[n] = f
	return n
}

func (c *Catalog) attachTable(f *model.File, fileNode *model.Node, t *model.Table) {
	f.AddTable(t)
	n := fileNode.AddChild(model.NewSheetNode(t))
	c.tableNodes[t] = n
	c.nodeTables[n] = t
}

// detachTable removes t from the catalog and the tree, and its file once empty.
func (c *Catalog) detachTable(t *model.Table) {
	n := c.tableNodes[t]
	if err := c.tree.Remove(n); err != nil && !errors.Is(err, model.ErrNodeNotInTree) {
		c.logger.Warn("failed to remove sheet node", "table", t.Name, "error", err)
	}
	delete(c.tableNodes, t)
	delete(c.nodeTables, n)

	f := t.File
	if f == nil {
		return
	}
	f.RemoveTable(t)
	if len(f.Tables) == 0 {
		c.detachFile(f)
	}
}

func (c *Catalog) detachFile(f *model.File) {
	n := c.fileNodes[f]
	_ = c.tree.Remove(n)
	delete(c.fileNodes, f)
	delete(c.nodeFiles, n)
	for i, owned := range c.files {
		if owned == f {
			c.files = append(c.files[:i], c.files[i+1:]...)
			break
		}
	}
}

func tableName(t *model.Table) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}
