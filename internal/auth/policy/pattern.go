package policy

import (
	"fmt"
	"path"
	"strings"
)

type segKind uint8

const (
	segLiteral  segKind = iota
	segParam            // {name}
	segStar             // *
	segGlobstar         // **, last segment only
)

type segment struct {
	kind segKind
	lit  string
}

// pattern is a compiled path pattern. Globstar may only be the final
// segment, which keeps matching linear in the number of segments.
type pattern []segment

func compilePattern(raw string) (pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrBadPattern, raw)
	}
	if raw == "/" {
		return pattern{}, nil
	}

	parts := strings.Split(strings.TrimPrefix(raw, "/"), "/")
	p := make(pattern, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "":
			if i == len(parts)-1 {
				continue // trailing slash
			}
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrBadPattern, raw)
		case part == "**":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: %q uses ** before the last segment", ErrBadPattern, raw)
			}
			p = append(p, segment{kind: segGlobstar})
		case part == "*":
			p = append(p, segment{kind: segStar})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}*") {
				return nil, fmt.Errorf("%w: %q has a bad parameter %q", ErrBadPattern, raw, part)
			}
			p = append(p, segment{kind: segParam, lit: name})
		case strings.ContainsAny(part, "{}*"):
			return nil, fmt.Errorf("%w: %q has a bad segment %q", ErrBadPattern, raw, part)
		default:
			p = append(p, segment{kind: segLiteral, lit: part})
		}
	}
	return p, nil
}

// splitPath cleans a request path and splits it into segments. Cleaning
// resolves dot segments so /api/users/../admin is judged as /api/admin.
func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

func (p pattern) match(segs []string) bool {
	for i, s := range p {
		if s.kind == segGlobstar {
			return true
		}
		if i >= len(segs) {
			return false
		}
		switch s.kind {
		case segLiteral:
			if segs[i] != s.lit {
				return false
			}
		case segParam, segStar:
			if segs[i] == "" {
				return false
			}
		}
	}
	return len(segs) == len(p)
}

// covers reports whether every path matched by q is also matched by p.
func (p pattern) covers(q pattern) bool {
	for i, s := range p {
		if s.kind == segGlobstar {
			return true
		}
		if i >= len(q) {
			return false
		}
		switch t := q[i]; {
		case t.kind == segGlobstar:
			return false
		case s.kind == segLiteral:
			if t.kind != segLiteral || t.lit != s.lit {
				return false
			}
		}
	}
	return len(q) == len(p)
}

func (p pattern) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		switch s.kind {
		case segLiteral:
			b.WriteString(s.lit)
		case segParam:
			b.WriteString("{" + s.lit + "}")
		case segStar:
			b.WriteString("*")
		case segGlobstar:
			b.WriteString("**")
		}
	}
	return b.String()
}
