// Package keyvalues parses Valve KeyValues text files (credits.txt, gameinfo.txt,
// libraryfolders.vdf, language resources) into an ordered tree.
//
// Unlike a map based decoder, duplicate keys are kept in file order. The credits
// script depends on this: every lyric segment and ascii art line is its own entry,
// and many of them share a key.
package keyvalues

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnterminatedString = errors.New("unterminated quoted string")
	ErrUnbalancedBraces   = errors.New("unbalanced braces")
	ErrMissingValue       = errors.New("key without value")
)

// Entry is one key in a Node. Exactly one of Value or Child is meaningful:
// Child is non-nil for blocks, Value holds the string otherwise.
type Entry struct {
	Key   string
	Value string
	Child *Node
}

// IsBlock reports whether the entry holds a nested node.
func (e Entry) IsBlock() bool {
	return e.Child != nil
}

// Node is an ordered list of entries.
type Node struct {
	Entries []Entry
}

// Sub returns the first nested block with the given key (case-insensitive).
func (n *Node) Sub(key string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, e := range n.Entries {
		if e.Child != nil && strings.EqualFold(e.Key, key) {
			return e.Child, true
		}
	}
	return nil, false
}

// String returns the first string value with the given key (case-insensitive).
func (n *Node) String(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, e := range n.Entries {
		if e.Child == nil && strings.EqualFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// Has reports whether any entry, block or value, uses the key.
func (n *Node) Has(key string) bool {
	if n == nil {
		return false
	}
	for _, e := range n.Entries {
		if strings.EqualFold(e.Key, key) {
			return true
		}
	}
	return false
}

// Path walks nested blocks, e.g. Path("lang", "Tokens").
func (n *Node) Path(keys ...string) (*Node, bool) {
	cur := n
	for _, k := range keys {
		next, ok := cur.Sub(k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Parse parses a complete KeyValues document. The returned node holds the
// top level entries, usually a single named block.
func Parse(text string) (*Node, error) {
	p := &parser{lex: lexer{src: text, line: 1}}
	root, err := p.parseEntries(false)
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex     lexer
	peeked  *token
	peekErr error
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, nil
	}
	if p.peekErr != nil {
		err := p.peekErr
		p.peekErr = nil
		return token{}, err
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil && p.peekErr == nil {
		t, err := p.lex.next()
		if err != nil {
			p.peekErr = err
			return token{}, err
		}
		p.peeked = &t
	}
	if p.peekErr != nil {
		return token{}, p.peekErr
	}
	return *p.peeked, nil
}

func (p *parser) parseEntries(nested bool) (*Node, error) {
	node := &Node{}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokEOF:
			if nested {
				return nil, fmt.Errorf("line %d: %w", t.line, ErrUnbalancedBraces)
			}
			return node, nil
		case tokClose:
			if !nested {
				return nil, fmt.Errorf("line %d: %w", t.line, ErrUnbalancedBraces)
			}
			return node, nil
		case tokOpen:
			return nil, fmt.Errorf("line %d: block without key: %w", t.line, ErrUnbalancedBraces)
		case tokCond:
			// stray conditional, nothing to attach it to
			continue
		}

		key := t.text
		v, err := p.next()
		if err != nil {
			return nil, err
		}
		// A conditional may sit between a key and its block.
		for v.kind == tokCond {
			if v, err = p.next(); err != nil {
				return nil, err
			}
		}
		switch v.kind {
		case tokOpen:
			child, err := p.parseEntries(true)
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, Entry{Key: key, Child: child})
		case tokString:
			node.Entries = append(node.Entries, Entry{Key: key, Value: v.text})
		default:
			return nil, fmt.Errorf("line %d: %q: %w", t.line, key, ErrMissingValue)
		}
		if after, err := p.peek(); err == nil && after.kind == tokCond {
			_, _ = p.next()
		}
	}
}
