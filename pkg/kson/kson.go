// Package kson is a lenient, non-recursive parser for JSON-like text.
//
// The grammar is a superset of JSON: strings may be single or double quoted,
// unquoted tokens are accepted anywhere a value is, and both objects and arrays
// may hold keyed and unkeyed members. Parsing stops after the first complete
// top-level value. String payloads are kept as raw spans of the input; Text
// resolves their escapes on demand.
//
// A parsed document is an Arena: a flat slice of nodes where containers refer
// to their children by index and node 0 is the root.
package kson

import (
	"errors"
	"fmt"
)

// Kind is the syntactic form of a node.
type Kind uint8

const (
	Bare         Kind = 1 // unquoted token
	SingleQuoted Kind = 2
	DoubleQuoted Kind = 3
	Array        Kind = 4 // [...]
	Object       Kind = 5 // {...}
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Container reports whether k is Array or Object.
func (k Kind) Container() bool { return k == Array || k == Object }

var (
	ErrExtraRight   = errors.New("kson: unmatched closing bracket")
	ErrExtraLeft    = errors.New("kson: unclosed bracket or empty input")
	ErrNoKey        = errors.New("kson: ':' without a key")
	ErrNoValue      = errors.New("kson: key without a value")
	ErrUnterminated = errors.New("kson: unterminated string")
)

// SyntaxError carries one of the sentinel errors and the byte offset where
// parsing stopped.
type SyntaxError struct {
	Err    error
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Node is one value of a document. Scalars carry their raw text in Str;
// containers list child node indices in Child. Key is set when Keyed is true.
type Node struct {
	Kind  Kind
	Key   string
	Keyed bool
	Str   string
	Child []int
}

// Text returns the scalar value with backslash escapes of quoted strings
// resolved. Bare tokens are returned as written.
func (n *Node) Text() string {
	if n.Kind == SingleQuoted || n.Kind == DoubleQuoted {
		return unescape(n.Str)
	}
	return n.Str
}

// KeyText returns Key with backslash escapes resolved.
func (n *Node) KeyText() string { return unescape(n.Key) }

// Arena holds every node of a document. Nodes[0] is the root.
type Arena struct {
	Nodes []Node
}

// Len returns the number of nodes. It is 0 for a nil or released arena.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Nodes)
}

// Release drops every node at once. It is safe on a nil arena and may be
// called repeatedly.
func (a *Arena) Release() {
	if a == nil {
		return
	}
	a.Nodes = nil
}

func (a *Arena) valid(i int) bool { return a != nil && i >= 0 && i < len(a.Nodes) }

// ByKey returns the first child of node whose key equals key.
func (a *Arena) ByKey(node int, key string) (int, bool) {
	if !a.valid(node) {
		return 0, false
	}
	for _, c := range a.Nodes[node].Child {
		if n := &a.Nodes[c]; n.Keyed && (n.Key == key || n.KeyText() == key) {
			return c, true
		}
	}
	return 0, false
}

// ByIndex returns the i-th child of node.
func (a *Arena) ByIndex(node, i int) (int, bool) {
	if !a.valid(node) {
		return 0, false
	}
	child := a.Nodes[node].Child
	if i < 0 || i >= len(child) {
		return 0, false
	}
	return child[i], true
}

// Query follows path from node. A string element selects a child by key, an
// int element selects a child by position.
func (a *Arena) Query(node int, path ...any) (int, bool) {
	if !a.valid(node) {
		return 0, false
	}
	cur := node
	for _, p := range path {
		var ok bool
		switch v := p.(type) {
		case string:
			cur, ok = a.ByKey(cur, v)
		case int:
			cur, ok = a.ByIndex(cur, v)
		}
		if !ok {
			return 0, false
		}
	}
	return cur, true
}
