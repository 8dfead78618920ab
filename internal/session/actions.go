package session

import (
	"context"
	"fmt"

	"github.com/xlsql/xlsql"
	"github.com/xlsql/xlsql/domain/model"
	"github.com/xlsql/xlsql/engine"
)

// ActionID identifies a node action.
type ActionID string

// Node actions
const (
	ActionShowInFolder         ActionID = "show-in-folder"
	ActionRemoveFile           ActionID = "remove-file"
	ActionInsertTableName      ActionID = "insert-table-name"
	ActionShowData             ActionID = "show-data"
	ActionRemoveTable          ActionID = "remove-table"
	ActionInsertFieldName      ActionID = "insert-field-name"
	ActionInsertFieldNameComma ActionID = "insert-field-name-comma"
)

// Handler performs an action on a node.
type Handler func(ctx context.Context, s *Session, n *model.Node) error

// Action is one entry of a node's action menu.
type Action struct {
	ID      ActionID
	Label   string
	handler Handler
}

// actionTable lists the actions offered per node kind, in menu order.
var actionTable = map[model.NodeKind][]Action{
	model.NodeKindFile: {
		{ID: ActionShowInFolder, Label: "Show file in folder", handler: showInFolder},
		{ID: ActionRemoveFile, Label: "Remove file from list", handler: removeFile},
	},
	model.NodeKindSheet: {
		{ID: ActionInsertTableName, Label: "Insert [table name] into SQL", handler: insertPayload("")},
		{ID: ActionShowData, Label: "Show table data", handler: showData},
		{ID: ActionRemoveTable, Label: "Remove table from list", handler: removeTable},
	},
	model.NodeKindField: {
		{ID: ActionInsertFieldName, Label: `Insert "field name" into SQL`, handler: insertPayload("")},
		{ID: ActionInsertFieldNameComma, Label: `Insert "field name", into SQL`, handler: insertPayload(",")},
	},
}

// Actions returns the actions offered for kind.
func Actions(kind model.NodeKind) ([]Action, error) {
	actions, ok := actionTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", model.ErrUnknownNodeKind, kind)
	}
	return append([]Action(nil), actions...), nil
}

func lookupAction(kind model.NodeKind, id ActionID) (Action, error) {
	actions, err := Actions(kind)
	if err != nil {
		return Action{}, err
	}
	for _, a := range actions {
		if a.ID == id {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q for %s nodes", ErrUnknownAction, id, kind)
}

func showInFolder(ctx context.Context, s *Session, n *model.Node) error {
	if err := s.opener(ctx, n.Value); err != nil {
		return fmt.Errorf("failed to show %s in folder: %w", n.Value, err)
	}
	s.setStatus("Opened folder of %s", displayPath(n.Value))
	return nil
}

func removeFile(ctx context.Context, s *Session, n *model.Node) error {
	file, ok := s.catalog.FileForNode(n)
	if !ok {
		return xlsql.ErrFileNotInCatalog
	}
	if err := s.catalog.RemoveFile(ctx, file); err != nil {
		return err
	}
	s.refreshKnownTables(ctx)
	s.setStatus("Removed file %s", displayPath(file.Path))
	return nil
}

func removeTable(ctx context.Context, s *Session, n *model.Node) error {
	table, ok := s.catalog.TableForNode(n)
	if !ok {
		return xlsql.ErrTableNotFound
	}
	if err := s.catalog.RemoveTable(ctx, table); err != nil {
		return err
	}
	s.refreshKnownTables(ctx)
	s.setStatus("Removed table %s", table.Name)
	return nil
}

func showData(ctx context.Context, s *Session, n *model.Node) error {
	table, ok := s.catalog.TableForNode(n)
	if !ok {
		return xlsql.ErrTableNotFound
	}
	if err := s.runQuery(ctx, "SELECT * FROM "+engine.QuoteIdent(table.Name)); err != nil {
		return err
	}
	s.setStatus("Showing data of %s", model.SheetPayload(table.Name))
	return nil
}

// insertPayload inserts the node payload, padded with spaces, followed by suffix.
func insertPayload(suffix string) Handler {
	return func(_ context.Context, s *Session, n *model.Node) error {
		s.InsertText(" " + n.Value + suffix + " ")
		return nil
	}
}
