package kson

// Stack markers. Non-negative stack entries are node indices.
const (
	markArray  = -1
	markObject = -2
	markKey    = -3 // the node below is a key waiting for its value
)

type parser struct {
	text  string
	pos   int
	nodes []Node
	stack []int
}

// Parse parses the first complete value of text.
func Parse(text string) (*Arena, error) {
	a, _, err := ParseLen(text)
	return a, err
}

// ParseLen is Parse that also reports how many bytes were consumed: through
// the end of the first value plus any blanks after it. Anything past that is
// ignored. On error no arena is returned.
func ParseLen(text string) (*Arena, int, error) {
	p := &parser{text: text, stack: make([]int, 0, 8)}
	if err := p.run(); err != nil {
		return nil, 0, err
	}
	return &Arena{Nodes: p.nodes}, p.pos, nil
}

func isBlank(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case ',', ']', '}', ':':
		return true
	}
	return isBlank(c)
}

func (p *parser) skipBlanks() {
	for p.pos < len(p.text) && isBlank(p.text[p.pos]) {
		p.pos++
	}
}

func (p *parser) fail(err error) error {
	return &SyntaxError{Err: err, Offset: p.pos}
}

func (p *parser) top() int { return p.stack[len(p.stack)-1] }

func (p *parser) newNode() int {
	p.stack = append(p.stack, len(p.nodes))
	p.nodes = append(p.nodes, Node{})
	return len(p.nodes) - 1
}

func (p *parser) run() error {
	for {
		p.skipBlanks()
		if p.pos >= len(p.text) {
			break
		}
		switch c := p.text[p.pos]; c {
		case ',':
			p.pos++
		case '[', '{':
			mark := markArray
			if c == '{' {
				mark = markObject
			}
			if len(p.stack) >= 2 && p.top() == markKey {
				p.stack[len(p.stack)-1] = mark
			} else {
				p.newNode()
				p.stack = append(p.stack, mark)
			}
			p.pos++
		case ']', '}':
			if err := p.close(c); err != nil {
				return err
			}
			p.pos++
			if len(p.stack) == 1 {
				p.skipBlanks()
				return nil
			}
		case ':':
			if err := p.colon(); err != nil {
				return err
			}
			p.pos++
		default:
			if err := p.scalar(c); err != nil {
				return err
			}
			if len(p.stack) == 1 {
				// a top-level scalar is complete unless it is a key
				p.skipBlanks()
				if p.pos >= len(p.text) || p.text[p.pos] != ':' {
					return nil
				}
			}
		}
	}
	if len(p.stack) != 1 {
		return p.fail(ErrExtraLeft)
	}
	return nil
}

func (p *parser) close(c byte) error {
	mark, kind := markArray, Array
	if c == '}' {
		mark, kind = markObject, Object
	}
	if len(p.stack) > 0 && p.top() == markKey {
		return p.fail(ErrNoValue)
	}
	i := len(p.stack) - 1
	for i >= 0 && p.stack[i] >= 0 {
		i--
	}
	if i < 0 || p.stack[i] != mark {
		return p.fail(ErrExtraRight)
	}

	u := &p.nodes[p.stack[i-1]]
	if u.Kind != 0 {
		// a scalar followed by ':' became this container's key
		u.Key, u.Keyed, u.Str = u.Str, true, ""
	}
	u.Child = append(make([]int, 0, len(p.stack)-i-1), p.stack[i+1:]...)
	u.Kind = kind
	p.stack = p.stack[:i]
	return nil
}

func (p *parser) colon() error {
	if len(p.stack) == 0 || p.top() < 0 {
		return p.fail(ErrNoKey)
	}
	if n := &p.nodes[p.top()]; n.Kind.Container() || n.Keyed {
		return p.fail(ErrNoKey)
	}
	p.stack = append(p.stack, markKey)
	return nil
}

func (p *parser) scalar(c byte) error {
	var idx int
	if len(p.stack) >= 2 && p.top() == markKey {
		p.stack = p.stack[:len(p.stack)-1]
		idx = p.top()
	} else {
		idx = p.newNode()
	}

	text := p.text
	var str string
	kind := Bare
	if c == '\'' || c == '"' {
		q := p.pos + 1
		for q < len(text) && text[q] != c {
			if text[q] == '\\' {
				q++
			}
			q++
		}
		if q >= len(text) {
			return p.fail(ErrUnterminated)
		}
		str = text[p.pos+1 : q]
		kind = SingleQuoted
		if c == '"' {
			kind = DoubleQuoted
		}
		p.pos = q + 1
	} else {
		q := p.pos
		for q < len(text) && !isDelim(text[q]) {
			if text[q] == '\\' {
				q++
			}
			q++
		}
		q = min(q, len(text))
		str = text[p.pos:q]
		p.pos = q
	}

	u := &p.nodes[idx]
	if u.Kind != 0 {
		u.Key, u.Keyed = u.Str, true
	}
	u.Str, u.Kind = str, kind
	return nil
}
