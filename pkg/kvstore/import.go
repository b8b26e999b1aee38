package kvstore

import (
	"strconv"
	"strings"

	"xlib-go/pkg/kson"
	"xlib-go/pkg/xhash"
)

// ImportKSON stores every scalar of a parsed document under its dotted path
// (object keys and array positions), optionally under prefix. Values are the
// escape-resolved text. It returns the number of keys written. The import is
// all or nothing.
func (s *Store) ImportKSON(a *kson.Arena, prefix string) (int, error) {
	if a.Len() == 0 {
		return 0, nil
	}

	type frame struct {
		node int
		path string
	}
	root := prefix
	if n := &a.Nodes[0]; n.Keyed {
		root = join(prefix, n.KeyText())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]frame, 0, a.Len())
	stack := []frame{{0, root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &a.Nodes[f.node]
		if !n.Kind.Container() {
			staged = append(staged, f)
			continue
		}
		for i := len(n.Child) - 1; i >= 0; i-- {
			c := n.Child[i]
			seg := strconv.Itoa(i)
			if a.Nodes[c].Keyed {
				seg = a.Nodes[c].KeyText()
			}
			stack = append(stack, frame{c, join(f.path, seg)})
		}
	}

	// stage into a copy so a failed Put leaves the store untouched
	next := xhash.NewMap[string, []byte](s.hash,
		xhash.WithPresize(s.table.Size()+len(staged)),
		xhash.WithMaxBuckets(s.cfg.MaxBuckets))
	for k, v := range s.table.All() {
		if err := set(next, k, v); err != nil {
			return 0, err
		}
	}
	for _, f := range staged {
		if err := set(next, f.path, []byte(a.Nodes[f.node].Text())); err != nil {
			return 0, err
		}
	}
	s.table = next
	return len(staged), nil
}

func join(path, seg string) string {
	if path == "" {
		return seg
	}
	var b strings.Builder
	b.Grow(len(path) + 1 + len(seg))
	b.WriteString(path)
	b.WriteByte('.')
	b.WriteString(seg)
	return b.String()
}
