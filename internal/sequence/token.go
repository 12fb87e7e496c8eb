package sequence

import "fmt"

// TokenKind identifies a lexical token in a sequence pattern.
type TokenKind int

const (
	TokenLParen TokenKind = iota
	TokenRParen
	TokenComma
	TokenMult
	TokenLabel
	TokenDuration
)

var tokenKindNames = map[TokenKind]string{
	TokenLParen:   "LPAREN",
	TokenRParen:   "RPAREN",
	TokenComma:    "COMMA",
	TokenMult:     "MULT",
	TokenLabel:    "LABEL",
	TokenDuration: "DURATION",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// maxMult caps a repeat count so a typo cannot overflow int.
const maxMult = 1_000_000

// Token is one lexeme. Mult carries the repeat count for TokenMult; Text holds
// the raw text for labels and durations.
type Token struct {
	Kind TokenKind
	Text string
	Mult int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenMult:
		return fmt.Sprintf("MULT(%d)", t.Mult)
	case TokenLabel, TokenDuration:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
	return t.Kind.String()
}

// Tokenize splits a pattern into tokens. It never fails: whitespace outside
// quotes is dropped and unknown characters are skipped. Structure is checked
// by the parser, not here.
func Tokenize(pattern string) []Token {
	src := []rune(pattern)
	var tokens []Token

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case isSpace(c):
			i++

		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "("})
			i++

		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")"})
			i++

		case c == ',':
			tokens = append(tokens, Token{Kind: TokenComma, Text: ","})
			i++

		case c == 'x' && i+1 < len(src) && isDigit(src[i+1]):
			j := i + 1
			n := 0
			for j < len(src) && isDigit(src[j]) {
				if n < maxMult {
					n = n*10 + int(src[j]-'0')
				}
				j++
			}
			n = min(n, maxMult)
			tokens = append(tokens, Token{Kind: TokenMult, Text: string(src[i:j]), Mult: n})
			i = j

		case c == '\'' || c == '"':
			j := i + 1
			for j < len(src) && src[j] != c {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenLabel, Text: string(src[i+1 : j])})
			if j < len(src) {
				j++ // closing quote
			}
			i = j

		case isDigit(c):
			j := i
			for j < len(src) && isDurationRune(src[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenDuration, Text: string(src[i:j])})
			i = j

		case isLabelRune(c):
			j := i
			for j < len(src) && isLabelRune(src[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenLabel, Text: string(src[i:j])})
			i = j

		default:
			i++
		}
	}
	return tokens
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isDurationRune(c rune) bool {
	return isDigit(c) || c == 'h' || c == 'm' || c == 's'
}

func isLabelRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_' || c == '-'
}
