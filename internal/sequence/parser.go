package sequence

// DefaultLabel names a phase written without a label.
const DefaultLabel = "Timer"

// Node is an element of a parsed sequence: either a *PhaseNode or a *GroupNode.
type Node interface {
	node()
}

// PhaseNode is a single timed segment.
type PhaseNode struct {
	Seconds      int
	Label        string
	DurationText string
}

// GroupNode is a parenthesised run of items repeated Multiply times.
type GroupNode struct {
	Items    []Node
	Multiply int
}

func (*PhaseNode) node() {}
func (*GroupNode) node() {}

// Parse builds the node tree for a token stream.
//
//	sequence := item (','? item)*
//	item     := group | phase
//	group    := '(' sequence ')' MULT?
//	phase    := DURATION LABEL?
//
// Parsing is lenient: stray labels and multipliers are dropped, a closing paren
// without an opener ends the current level, and a missing closer is implied at
// end of input.
func Parse(tokens []Token) []Node {
	p := &parser{tokens: tokens}
	return p.sequence()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

// sequence parses items until end of input or a closing paren. The closing
// paren is left for the caller.
func (p *parser) sequence() []Node {
	var items []Node
	for {
		tok, ok := p.peek()
		if !ok {
			return items
		}

		switch tok.Kind {
		case TokenRParen:
			return items

		case TokenLParen:
			p.pos++
			items = append(items, p.group())

		case TokenDuration:
			p.pos++
			if n := p.phase(tok); n != nil {
				items = append(items, n)
			}

		default:
			// commas separate items; labels and multipliers here have nothing to attach to
			p.pos++
		}
	}
}

func (p *parser) group() *GroupNode {
	g := &GroupNode{Items: p.sequence(), Multiply: 1}

	if tok, ok := p.peek(); ok && tok.Kind == TokenRParen {
		p.pos++
	}
	if tok, ok := p.peek(); ok && tok.Kind == TokenMult {
		p.pos++
		if tok.Mult > 0 {
			g.Multiply = tok.Mult
		}
	}
	return g
}

func (p *parser) phase(dur Token) *PhaseNode {
	n := &PhaseNode{
		Seconds:      ParseDuration(dur.Text),
		Label:        DefaultLabel,
		DurationText: dur.Text,
	}
	if tok, ok := p.peek(); ok && tok.Kind == TokenLabel {
		p.pos++
		if tok.Text != "" {
			n.Label = tok.Text
		}
	}
	if n.Seconds <= 0 {
		return nil
	}
	return n
}
