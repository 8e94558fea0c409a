package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// reservedChars may not appear in unquoted arguments.
const reservedChars = `"'();,=!~<>`

// Parse parses filter text into a Node tree.
func Parse(input string) (Node, error) {
	p := &parser{input: input}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(0, "empty filter")
	}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %q", p.rest())
	}
	return n, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Input: p.input, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) rest() string {
	r := p.input[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

func (p *parser) skipSpace() {
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

// keyword consumes a word operator ("and", "or") that is preceded by
// whitespace and followed by whitespace or '('.
func (p *parser) keyword(word string) bool {
	if p.pos == 0 || !isSpace(p.input[p.pos-1]) {
		return false
	}
	end := p.pos + len(word)
	if end >= len(p.input) || !strings.EqualFold(p.input[p.pos:end], word) {
		return false
	}
	if next := p.input[end]; !isSpace(next) && next != '(' {
		return false
	}
	p.pos = end
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (p *parser) parseOr() (Node, error) {
	return p.parseLogical(Or, ',', "or", p.parseAnd)
}

func (p *parser) parseAnd() (Node, error) {
	return p.parseLogical(And, ';', "and", p.parseConstraint)
}

func (p *parser) parseLogical(op LogicalOp, sep byte, word string, next func() (Node, error)) (Node, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for {
		p.skipSpace()
		if p.peek() == sep {
			p.pos++
		} else if !p.keyword(word) {
			break
		}
		child, err := next()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return first, nil
	}
	return Logical{Op: op, Children: children}, nil
}

func (p *parser) parseConstraint() (Node, error) {
	p.skipSpace()
	if p.peek() != '(' {
		return p.parseComparison()
	}

	open := p.pos
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		return nil, p.errorf(open, "empty group")
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ')' {
		return nil, p.errorf(open, "unclosed group")
	}
	p.pos++
	return n, nil
}

func (p *parser) parseComparison() (Node, error) {
	start := p.pos
	for !p.eof() && isSelectorChar(p.peek()) {
		p.pos++
	}
	selector := p.input[start:p.pos]
	if selector == "" {
		if p.eof() {
			return nil, p.errorf(start, "expected selector, got end of input")
		}
		return nil, p.errorf(start, "expected selector, got %q", p.rest())
	}
	segments := strings.Split(selector, ".")
	if len(segments) > 2 {
		return nil, p.errorf(start, "selector %q is nested too deep", selector)
	}
	for _, s := range segments {
		if s == "" {
			return nil, p.errorf(start, "selector %q has an empty segment", selector)
		}
	}

	p.skipSpace()
	opPos := p.pos
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	if !op.multiValued() && len(args) != 1 {
		return nil, p.errorf(opPos, "operator %s takes exactly one argument, got %d", op, len(args))
	}

	return Comparison{Selector: selector, Operator: op, Args: args, Pos: start}, nil
}

func isSelectorChar(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *parser) parseOperator() (Operator, error) {
	start := p.pos
	rest := p.input[p.pos:]

	for _, sym := range []string{"==", "!=", ">=", "<="} {
		if strings.HasPrefix(rest, sym) {
			p.pos += len(sym)
			op, _ := LookupOperator(sym)
			return op, nil
		}
	}
	if strings.HasPrefix(rest, ">") || strings.HasPrefix(rest, "<") {
		p.pos++
		op, _ := LookupOperator(rest[:1])
		return op, nil
	}

	if strings.HasPrefix(rest, "=") {
		j := 1
		for j < len(rest) && ((rest[j] >= 'a' && rest[j] <= 'z') || (rest[j] >= 'A' && rest[j] <= 'Z')) {
			j++
		}
		if j > 1 && j < len(rest) && rest[j] == '=' {
			sym := strings.ToLower(rest[:j+1])
			op, ok := LookupOperator(sym)
			if !ok {
				return 0, p.errorf(start, "unknown operator %q", rest[:j+1])
			}
			p.pos += j + 1
			return op, nil
		}
	}

	if p.eof() {
		return 0, p.errorf(start, "expected operator, got end of input")
	}
	return 0, p.errorf(start, "expected operator, got %q", p.rest())
}

// parseArguments reads a single value or a parenthesized list.
func (p *parser) parseArguments() ([]string, error) {
	if p.peek() != '(' {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}

	var args []string
	open := p.pos
	p.pos++
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, p.errorf(open, "unclosed argument list")
		}
	}
}

func (p *parser) parseValue() (string, error) {
	start := p.pos
	if q := p.peek(); q == '"' || q == '\'' {
		return p.parseQuoted(q)
	}
	for !p.eof() {
		c := p.peek()
		if isSpace(c) || strings.IndexByte(reservedChars, c) >= 0 {
			break
		}
		p.pos++
	}
	if p.pos == start {
		if p.eof() {
			return "", p.errorf(start, "expected value, got end of input")
		}
		return "", p.errorf(start, "expected value, got %q", p.rest())
	}
	return p.input[start:p.pos], nil
}

func (p *parser) parseQuoted(quote byte) (string, error) {
	start := p.pos
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\\' && p.pos+1 < len(p.input):
			sb.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf(start, "unterminated quoted value")
}
