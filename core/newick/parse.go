// core/newick/parse.go
package newick

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a Newick string. Newlines and other whitespace between tokens
// are ignored; internal node labels (e.g. support values) are accepted and
// dropped. Leaf labels must be non-negative integers.
func Parse(s string) (*Tree, error) {
	p := &parser{src: s}
	p.skipSpace()
	root, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eat(';') {
		return nil, p.errorf("expected ';'")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data after ';'")
	}
	return New(root)
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, a ...any) error {
	return fmt.Errorf("newick: %s at offset %d", fmt.Sprintf(format, a...), p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// label reads up to the next structural character.
func (p *parser) label() string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("(),:;", rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *parser) node() (*Node, error) {
	var n *Node
	if p.eat('(') {
		n = Internal()
		for {
			p.skipSpace()
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			p.skipSpace()
			if p.eat(',') {
				continue
			}
			if p.eat(')') {
				break
			}
			return nil, p.errorf("expected ',' or ')'")
		}
		p.label() // internal labels carry no sequence
	} else {
		lbl := p.label()
		if lbl == "" {
			return nil, p.errorf("empty leaf label")
		}
		idx, err := strconv.Atoi(lbl)
		if err != nil || idx < 0 {
			return nil, p.errorf("leaf label %q is not a sequence index", lbl)
		}
		n = Leaf(idx)
	}
	p.skipSpace()
	if p.eat(':') {
		p.skipSpace()
		raw := p.label()
		l, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, p.errorf("bad branch length %q", raw)
		}
		n.WithLength(l)
	}
	return n, nil
}
