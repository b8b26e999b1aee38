package kson

import "xlib-go/pkg/util"

// String renders the document compactly. Keys are always double quoted;
// scalars keep their original quoting and raw text.
func (a *Arena) String() string {
	return a.Format("")
}

// Format renders the document with one member per line, each nesting level
// indented by indent. An empty indent gives the compact form.
func (a *Arena) Format(indent string) string {
	if a.Len() == 0 {
		return ""
	}
	sb := util.NewStrBuf(indent)
	a.write(sb, 0, true)
	return sb.String()
}

// FormatNode renders the value of node i alone, without its key.
func (a *Arena) FormatNode(i int, indent string) string {
	if !a.valid(i) {
		return ""
	}
	sb := util.NewStrBuf(indent)
	a.write(sb, i, false)
	return sb.String()
}

func (a *Arena) write(sb *util.StrBuf, i int, withKey bool) {
	n := &a.Nodes[i]
	if withKey && n.Keyed {
		sb.WriteByte('"')
		sb.Write(n.Key)
		sb.Write(`":`)
		if sb.Pretty() {
			sb.WriteByte(' ')
		}
	}
	switch n.Kind {
	case Array, Object:
		open, end := byte('['), byte(']')
		if n.Kind == Object {
			open, end = '{', '}'
		}
		sb.WriteByte(open)
		if len(n.Child) > 0 {
			sb.Push()
			for j, c := range n.Child {
				if j > 0 {
					sb.WriteByte(',')
				}
				sb.Newline()
				a.write(sb, c, true)
			}
			sb.Pop()
			sb.Newline()
		}
		sb.WriteByte(end)
	case SingleQuoted:
		sb.WriteByte('\'')
		sb.Write(n.Str)
		sb.WriteByte('\'')
	case DoubleQuoted:
		sb.WriteByte('"')
		sb.Write(n.Str)
		sb.WriteByte('"')
	default:
		sb.Write(n.Str)
	}
}
