package rabbit

import (
	"fmt"
	"strings"
)

// Diagnostic is a non-fatal lexical complaint tied to a source position.
// Unrecognized characters are skipped, not fatal; the classifier records
// one Diagnostic per skipped character.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, column %d: %s", d.Line, d.Column, d.Message)
}

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	pending      *Token
	diagnostics  []Diagnostic
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() Token {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok
	}
	var tok Token
	for {
		l.skipWhitespace()
		switch l.ch {
		case '=':
			tok = newToken(ASSIGN, l.ch, l.line, l.column)
		case '+':
			tok = newToken(PLUS, l.ch, l.line, l.column)
		case '-':
			tok = newToken(MINUS, l.ch, l.line, l.column)
		case '*':
			tok = newToken(ASTERISK, l.ch, l.line, l.column)
		case '/':
			tok = newToken(SLASH, l.ch, l.line, l.column)
		case '^':
			tok = newToken(POWER, l.ch, l.line, l.column)
		case ',':
			tok = newToken(COMMA, l.ch, l.line, l.column)
		case ':':
			tok = newToken(COLON, l.ch, l.line, l.column)
		case ';':
			tok = newToken(SEMICOLON, l.ch, l.line, l.column)
		case '(':
			tok = newToken(LPAREN, l.ch, l.line, l.column)
		case ')':
			tok = newToken(RPAREN, l.ch, l.line, l.column)
		case '[':
			tok = newToken(LBRACKET, l.ch, l.line, l.column)
		case ']':
			tok = newToken(RBRACKET, l.ch, l.line, l.column)
		case '"':
			line, column := l.line, l.column
			literal, terminated := l.readString()
			if !terminated {
				l.report(line, column, "unterminated string literal")
			}
			return Token{Type: STRING, Literal: literal, Line: line, Column: column}
		case 0:
			tok.Literal = ""
			tok.Type = EOF
			return tok
		default:
			if isIdentifierStart(l.ch) {
				line, column := l.line, l.column
				literal := l.readIdentifier()
				return Token{Type: lookupIdentKind(literal), Literal: literal, Line: line, Column: column}
			}
			if isDigit(l.ch) {
				line, column := l.line, l.column
				return Token{Type: NUMBER, Literal: l.readNumber(), Line: line, Column: column}
			}
			if glyph, digit, size, ok := powerGlyph(l.input[l.position:]); ok {
				// A power glyph spells both the operator and its
				// exponent: "r²" classifies like "r^2".
				tok = Token{Type: POWER, Literal: glyph, Line: l.line, Column: l.column}
				l.pending = &Token{Type: NUMBER, Literal: digit, Line: l.line, Column: l.column}
				for i := 0; i < size; i++ {
					l.readChar()
				}
				return tok
			}
			l.report(l.line, l.column, fmt.Sprintf("illegal character %q", rune(l.ch)))
			l.readChar()
			continue
		}
		l.readChar()
		return tok
	}
}

// readIdentifier consumes a maximal identifier run including dotted
// segments: a '.' is part of the run only when the character after it
// can start an identifier, so "json.parse" is one run while "a.2" stops
// at "a". The caller classifies the full text against the registry.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for {
		if l.ch == '.' {
			if !isIdentifierStart(l.peekChar()) {
				break
			}
			l.readChar()
			continue
		}
		if !isIdentifierChar(l.ch) {
			break
		}
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber consumes digits with optional single underscores between
// digit groups and an optional fraction part. The literal keeps its
// underscores; they are stripped before numeric conversion.
func (l *Lexer) readNumber() string {
	start := l.position
	l.readDigits()
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		l.readDigits()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readDigits() {
	for {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '_' && isDigit(l.peekChar()) {
			l.readChar()
			continue
		}
		return
	}
}

func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	l.readChar()
	for {
		if l.ch == 0 {
			return sb.String(), false
		}
		if l.ch == '"' {
			l.readChar()
			return sb.String(), true
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				return sb.String(), false
			}
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) report(line, column int, msg string) {
	l.diagnostics = append(l.diagnostics, Diagnostic{Line: line, Column: column, Message: msg})
}

// Diagnostics returns the lexical complaints recorded so far, in source
// order.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diagnostics
}

func (l *Lexer) Reset(input string) {
	l.input = input
	l.position = 0
	l.readPosition = 0
	l.line = 1
	l.column = 0
	l.pending = nil
	l.diagnostics = nil
	l.readChar()
}
