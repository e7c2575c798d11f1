package lexer

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"tortuga/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int  // line of the current rune, 1 based
}

type Tokenizer interface {
	NextToken() token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	startPosition := l.position
	startLine := l.line

	switch l.ch {
	case '\n':
		literal := l.readNewlines()
		return token.Token{Type: token.NEWLINE, Literal: literal, Position: startPosition, Line: startLine}
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '!':
		if l.peekChar() == '=' {
			tok = l.handleCompoundToken(token.ILLEGAL, '=', token.NOT_EQ)
		} else {
			tok = newToken(token.ILLEGAL, l.ch, startPosition)
		}
	case '<':
		if l.peekChar() == '>' {
			// BASIC style inequality
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Literal: "<>", Position: startPosition}
		} else {
			tok = l.handleCompoundToken(token.LT, '=', token.LT_EQ)
		}
	case '>':
		tok = l.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case '+':
		tok = newToken(token.PLUS, l.ch, startPosition)
	case '-':
		tok = newToken(token.MINUS, l.ch, startPosition)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, startPosition)
	case '/':
		tok = newToken(token.SLASH, l.ch, startPosition)
	case '%':
		tok = newToken(token.PERCENT, l.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, l.ch, startPosition)
	case '(':
		tok = newToken(token.LPAREN, l.ch, startPosition)
	case ')':
		tok = newToken(token.RPAREN, l.ch, startPosition)
	case '"':
		str, err := l.readString()
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Literal: err.Error(), Position: startPosition, Line: startLine}
		}
		return token.Token{Type: token.STRING, Literal: str, Position: startPosition, Line: startLine}
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			tok.Line = startLine
			return tok
		} else if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			literal, isFloat, err := l.readNumber()
			tok.Position = startPosition
			tok.Line = startLine
			switch {
			case err != nil:
				tok.Type = token.ILLEGAL
				tok.Literal = err.Error()
			case isFloat:
				tok.Type = token.FLOAT
				tok.Literal = literal
			default:
				tok.Type = token.INT
				tok.Literal = literal
			}
			return tok
		} else {
			tok = newToken(token.ILLEGAL, l.ch, startPosition)
		}
	}

	tok.Line = startLine
	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	} else {
		return newToken(t, l.ch, startPosition)
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		case '\\':
			// a trailing backslash continues the statement on the next line
			if l.peekChar() == '\n' {
				l.readChar()
				l.readChar()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readNewlines collapses blank lines and comment-only lines into one NEWLINE token.
func (l *Lexer) readNewlines() string {
	start := l.position
	for {
		for l.ch == '\n' {
			l.readChar()
		}
		l.skipWhitespace()
		if l.ch != '\n' {
			break
		}
	}
	return strings.TrimRight(l.input[start:l.position], " \t\r")
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool, error) {
	var num strings.Builder
	isFloat := false
	if err := l.readDigits(&num); err != nil {
		return "", false, err
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		num.WriteRune(l.ch)
		l.readChar()
		if err := l.readDigits(&num); err != nil {
			return "", false, err
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		num.WriteRune(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			num.WriteRune(l.ch)
			l.readChar()
		}
		if !isDigit(l.ch) {
			return "", false, errors.New("malformed exponent in number literal")
		}
		for isDigit(l.ch) {
			num.WriteRune(l.ch)
			l.readChar()
		}
	}
	if isLetter(l.ch) {
		return "", false, errors.New("malformed number literal")
	}
	return num.String(), isFloat, nil
}

func (l *Lexer) readDigits(num *strings.Builder) error {
	for isDigit(l.ch) || l.ch == '_' {
		if l.ch == '_' {
			prev := l.input[l.position-1]
			// Rule: _ must be between digits
			if !isDigit(rune(prev)) || !isDigit(l.peekChar()) {
				return errors.New("underscore must be between digits in number literal")
			}
		} else {
			num.WriteRune(l.ch)
		}
		l.readChar()
	}
	return nil
}

func (l *Lexer) readString() (string, error) {
	var out strings.Builder
	l.readChar() // consume the opening "
	for {
		switch l.ch {
		case '"':
			l.readChar() // consume the closing "
			return out.String(), nil
		case 0, '\n':
			return "", errors.New("unterminated string literal")
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				return "", errors.New("invalid escape sequence in string literal")
			}
		default:
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
