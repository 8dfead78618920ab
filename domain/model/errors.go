package model

import "errors"

var (
	// ErrUnknownNodeKind is returned when a node carries a kind outside File, Sheet and Field
	ErrUnknownNodeKind = errors.New("unknown node kind")

	// ErrNodeNotInTree is returned when a node is not attached to the tree it is removed from
	ErrNodeNotInTree = errors.New("node is not in tree")
)
