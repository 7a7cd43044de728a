package keyvalues

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
	tokCond
)

const byteOrderMark = "\uFEFF"

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	line := l.line
	switch c := l.src[l.pos]; c {
	case '{':
		l.pos++
		return token{kind: tokOpen, line: line}, nil
	case '}':
		l.pos++
		return token{kind: tokClose, line: line}, nil
	case '"':
		s, err := l.quoted()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, line: line}, nil
	case '[':
		end := strings.IndexByte(l.src[l.pos:], ']')
		if end < 0 {
			return token{}, fmt.Errorf("line %d: unterminated conditional", line)
		}
		text := l.src[l.pos : l.pos+end+1]
		l.pos += end + 1
		return token{kind: tokCond, text: text, line: line}, nil
	default:
		return token{kind: tokString, text: l.bare(), line: line}, nil
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.src[l.pos:], byteOrderMark):
			l.pos += len(byteOrderMark)
		default:
			return
		}
	}
}

func (l *lexer) quoted() (string, error) {
	start := l.line
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return sb.String(), nil
		case '\\':
			if l.pos+1 < len(l.src) {
				switch l.src[l.pos+1] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '\\':
					sb.WriteByte('\\')
				case '"':
					sb.WriteByte('"')
				default:
					sb.WriteByte('\\')
					l.pos++
					continue
				}
				l.pos += 2
				continue
			}
			sb.WriteByte(c)
		case '\n':
			l.line++
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
		l.pos++
	}
	return "", fmt.Errorf("line %d: %w", start, ErrUnterminatedString)
}

func (l *lexer) bare() string {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		l.pos++
	}
	return l.src[start:l.pos]
}
