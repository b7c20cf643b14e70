package rabbit

import (
	"fmt"
	"unicode/utf8"
)

// Exponentiation shares the product tier with multiply and divide.
// That grouping is part of the language's compatibility surface, not an
// oversight to correct.
var precedences = map[TokenType]int{
	PLUS:     10,
	MINUS:    10,
	ASTERISK: 20,
	SLASH:    20,
	POWER:    20,
}

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	NUMBER  = "NUMBER"
	STRING  = "STRING"
	IDENT   = "IDENT"
	BUILTIN = "BUILTIN"

	RETURN = "RETURN"

	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	POWER    = "^"

	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACKET  = "["
	RBRACKET  = "]"
)

// lookupIdentKind classifies a fully scanned identifier run. The whole
// dotted text is matched against the builtin registry; an unmatched run
// stays a single IDENT even when it contains dots.
func lookupIdentKind(ident string) TokenType {
	if ident == "return" {
		return RETURN
	}
	if IsBuiltin(ident) {
		return BUILTIN
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func newToken(tokenType TokenType, ch byte, line int, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

func (t Token) Precedence() int {
	if p, ok := precedences[t.Type]; ok {
		return p
	}
	return 0
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, Line: %d, Column: %d)", t.Type, t.Literal, t.Line, t.Column)
}

func isIdentifierStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isIdentifierChar(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// powerGlyph reports whether the rune at the head of s is one of the
// unicode exponent spellings accepted alongside '^', and if so which
// digit the glyph carries.
func powerGlyph(s string) (string, string, int, bool) {
	r, size := utf8.DecodeRuneInString(s)
	switch r {
	case '²':
		return string(r), "2", size, true
	case '³':
		return string(r), "3", size, true
	}
	return "", "", 0, false
}
