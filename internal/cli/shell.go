package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/xlsql/xlsql/domain/model"
	"github.com/xlsql/xlsql/highlight"
	"github.com/xlsql/xlsql/internal/config"
	"github.com/xlsql/xlsql/internal/render"
	"github.com/xlsql/xlsql/internal/session"
)

const (
	prompt     = "xlsql> "
	contPrompt = "   ...> "
)

// shell executes shell input against a session.
type shell struct {
	sess    *session.Session
	out     io.Writer
	errOut  io.Writer
	opts    render.Options
	painter *highlight.Painter

	// nodes are the tree nodes as numbered by the last .tree
	nodes []*model.Node
	buf   strings.Builder
}

func newShell(sess *session.Session, cfg *config.Config, out, errOut io.Writer) *shell {
	renderer := render.NewRenderer(out, cfg.Color)
	return &shell{
		sess:    sess,
		out:     out,
		errOut:  errOut,
		opts:    renderOptions(cfg),
		painter: highlight.NewPainter(sess.Highlighter(), cfg.Theme, renderer),
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)

	sess, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sh := newShell(sess, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	// import failures are reported and the shell still starts
	for _, path := range args {
		_ = sess.Import(ctx, path)
		sh.printStatus()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    sh.completer(),
		Painter:         sh.painter,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xlsql v%s\n", Version)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.buf.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if sh.exec(ctx, line) {
			return nil
		}
		if sh.buf.Len() > 0 {
			rl.SetPrompt(contPrompt)
		} else {
			rl.SetPrompt(prompt)
		}
	}
}

// exec handles one line of input. It reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	if sh.buf.Len() == 0 && strings.HasPrefix(trimmed, ".") {
		return sh.dotCommand(ctx, trimmed)
	}

	// Accumulate multi-line SQL until semicolon
	if sh.buf.Len() > 0 {
		sh.buf.WriteString("\n")
	}
	sh.buf.WriteString(line)
	if !strings.HasSuffix(trimmed, ";") {
		return false
	}

	query := strings.TrimSuffix(strings.TrimSpace(sh.buf.String()), ";")
	sh.buf.Reset()
	sh.sess.SetSQL(query)
	sh.run(ctx)
	return false
}

func (sh *shell) run(ctx context.Context) {
	if err := sh.sess.Run(ctx); err != nil {
		sh.printStatus()
		return
	}
	sh.printResult()
	sh.printStatus()
}

func (sh *shell) dotCommand(ctx context.Context, line string) bool {
	parts, err := splitArgs(line)
	if err != nil {
		sh.printError(err)
		return false
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(sh.out)

	case ".import":
		if len(args) == 0 {
			sh.usage(".import <file>...")
			return false
		}
		for _, path := range args {
			_ = sh.sess.Import(ctx, path)
			sh.printStatus()
		}

	case ".tables":
		names, err := sh.sess.Catalog().ListTableNames(ctx)
		if err != nil {
			sh.printError(err)
			return false
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(sh.out, name)
		}

	case ".tree":
		sh.printTree()

	case ".toggle":
		n, ok := sh.node(args, ".toggle <node>")
		if !ok {
			return false
		}
		n.Expanded = !n.Expanded
		sh.printTree()

	case ".actions":
		n, ok := sh.node(args, ".actions <node>")
		if !ok {
			return false
		}
		actions, err := session.Actions(n.Kind)
		if err != nil {
			sh.printError(err)
			return false
		}
		for i, a := range actions {
			_, _ = fmt.Fprintf(sh.out, "%d. %s (%s)\n", i+1, a.Label, a.ID)
		}

	case ".do":
		sh.do(ctx, args)

	case ".show":
		if len(args) != 1 {
			sh.usage(".show <table>")
			return false
		}
		n, ok := sh.tableNode(args[0])
		if !ok {
			return false
		}
		if err := sh.sess.ShowTable(ctx, n); err != nil {
			sh.printStatus()
			return false
		}
		sh.printResult()
		sh.printStatus()

	case ".remove":
		if len(args) != 1 {
			sh.usage(".remove <table>")
			return false
		}
		n, ok := sh.tableNode(args[0])
		if !ok {
			return false
		}
		_ = sh.sess.Dispatch(ctx, n, session.ActionRemoveTable)
		sh.printStatus()

	case ".export":
		if len(args) != 2 {
			sh.usage(`.export <file> <sheet> (quote names with spaces: "Q1 sales")`)
			return false
		}
		file, ok := sh.sess.Catalog().LookupFile(args[0])
		if !ok {
			sh.printError(fmt.Errorf("file %s is not imported", args[0]))
			return false
		}
		n, _ := sh.sess.Catalog().NodeForFile(file)
		_ = sh.sess.Export(ctx, n, args[1])
		sh.printStatus()

	case ".sql":
		_, _ = fmt.Fprintln(sh.out, sh.painter.Render(sh.sess.SQL()))

	case ".format":
		sh.sess.Format()
		_, _ = fmt.Fprintln(sh.out, sh.painter.Render(sh.sess.SQL()))

	case ".run":
		sh.run(ctx)

	default:
		_, _ = fmt.Fprintf(sh.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// do runs an action picked by tree number and menu number.
func (sh *shell) do(ctx context.Context, args []string) {
	if len(args) != 2 {
		sh.usage(".do <node> <action>")
		return
	}
	n, ok := sh.node(args[:1], ".do <node> <action>")
	if !ok {
		return
	}
	actions, err := session.Actions(n.Kind)
	if err != nil {
		sh.printError(err)
		return
	}
	i, err := strconv.Atoi(args[1])
	if err != nil || i < 1 || i > len(actions) {
		sh.printError(fmt.Errorf("action must be a number from 1 to %d", len(actions)))
		return
	}

	action := actions[i-1]
	if err := sh.sess.Dispatch(ctx, n, action.ID); err != nil {
		sh.printStatus()
		return
	}
	switch action.ID {
	case session.ActionShowData:
		sh.printResult()
	case session.ActionInsertTableName, session.ActionInsertFieldName, session.ActionInsertFieldNameComma:
		_, _ = fmt.Fprintln(sh.out, sh.painter.Render(sh.sess.SQL()))
		return
	}
	sh.printStatus()
}

// splitArgs splits a dot-command line on unquoted whitespace. Single or
// double quotes group text containing spaces; backslashes are literal so
// that Windows paths need no escaping.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		quoteAt int
	)
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote, quoteAt, inWord = r, i, true
		case unicode.IsSpace(r):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote at column %d", quote, quoteAt+1)
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// node resolves a tree number from the last .tree listing.
func (sh *shell) node(args []string, usage string) (*model.Node, bool) {
	if len(args) != 1 {
		sh.usage(usage)
		return nil, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > len(sh.nodes) {
		sh.printError(fmt.Errorf("unknown node %q: run .tree to number the nodes", args[0]))
		return nil, false
	}
	n := sh.nodes[i-1]
	if n.Parent == nil {
		sh.printError(fmt.Errorf("node %d was removed: run .tree again", i))
		return nil, false
	}
	return n, true
}

func (sh *shell) tableNode(name string) (*model.Node, bool) {
	table, ok := sh.sess.Catalog().LookupTable(strings.Trim(name, "[]"))
	if !ok {
		sh.printError(fmt.Errorf("table %s is not in the catalog", name))
		return nil, false
	}
	n, _ := sh.sess.Catalog().NodeForTable(table)
	return n, true
}

func (sh *shell) printTree() {
	tree := sh.sess.Tree()
	sh.nodes = tree.Visible()
	if len(sh.nodes) == 0 {
		_, _ = fmt.Fprintln(sh.out, "(no files imported)")
		return
	}

	i := 0
	tree.Walk(func(n *model.Node, depth int) bool {
		i++
		marker := " "
		if len(n.Children) > 0 {
			marker = "+"
			if n.Expanded {
				marker = "-"
			}
		}
		line := fmt.Sprintf("%3d %s%s %s", i, strings.Repeat("  ", depth), marker, n.Text)
		if n.Detail != "" {
			line += "  " + n.Detail
		}
		_, _ = fmt.Fprintln(sh.out, line)
		return n.Expanded
	})
}

func (sh *shell) printResult() {
	if err := render.Result(sh.out, sh.sess.Result(), sh.opts); err != nil {
		sh.printError(err)
	}
}

func (sh *shell) printStatus() {
	status, failed := sh.sess.Status()
	if status == "" {
		return
	}
	if failed {
		_, _ = fmt.Fprintf(sh.errOut, "Error: %s\n", status)
		return
	}
	_, _ = fmt.Fprintln(sh.out, status)
}

func (sh *shell) printError(err error) {
	_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
}

func (sh *shell) usage(text string) {
	_, _ = fmt.Fprintf(sh.errOut, "Usage: %s\n", text)
}

// completer completes dot-commands, table names and imported files.
func (sh *shell) completer() *readline.PrefixCompleter {
	tables := readline.PcItemDynamic(func(string) []string {
		names := make([]string, 0)
		for _, t := range sh.sess.Catalog().Tables() {
			names = append(names, t.Name)
		}
		return names
	})
	files := readline.PcItemDynamic(func(string) []string {
		paths := make([]string, 0)
		for _, f := range sh.sess.Catalog().Files() {
			paths = append(paths, f.Path)
		}
		return paths
	})

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".import"),
		readline.PcItem(".tables"),
		readline.PcItem(".tree"),
		readline.PcItem(".toggle"),
		readline.PcItem(".actions"),
		readline.PcItem(".do"),
		readline.PcItem(".show", tables),
		readline.PcItem(".remove", tables),
		readline.PcItem(".export", files),
		readline.PcItem(".sql"),
		readline.PcItem(".format"),
		readline.PcItem(".run"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help                   Show this help message
  .import <file>...       Import files (xlsx, xlsm, csv, tsv, parquet, optionally compressed)
  .tables                 List all tables
  .tree                   Show the numbered file/sheet/field tree
  .toggle <node>          Expand or collapse a tree node
  .actions <node>         List the actions of a tree node
  .do <node> <action>     Run an action of a tree node
  .show <table>           Show every row of a table
  .remove <table>         Remove a table from the catalog
  .export <file> <sheet>  Append the last result to an imported workbook
  .sql                    Show the SQL buffer
  .format                 Format the SQL buffer
  .run                    Run the SQL buffer
  .quit / .exit           Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Insert actions append to the SQL buffer; .run executes it
  - Quote file or sheet names containing spaces: .export shop "Q1 sales"
  - Tab completion works for dot-commands and table names
`
	_, _ = fmt.Fprintln(w, help)
}
