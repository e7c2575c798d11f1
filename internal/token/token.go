package token

import "strings"

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT  = "IDENT"  // goForward, size, x, ...
	INT    = "INT"    // 1343456
	FLOAT  = "FLOAT"  // 3.25
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	COMMA  = ","
	LPAREN = "("
	RPAREN = ")"

	// Keywords
	FUNCTION    = "FUNCTION"
	ENDFUNCTION = "ENDFUNCTION"
	VAR         = "VAR"
	IF          = "IF"
	ELSEIF      = "ELSEIF"
	ELSE        = "ELSE"
	ENDIF       = "ENDIF"
	WHILE       = "WHILE"
	ENDWHILE    = "ENDWHILE"
	FOR         = "FOR"
	TO          = "TO"
	STEP        = "STEP"
	ENDFOR      = "ENDFOR"
	REPEAT      = "REPEAT"
	ENDREPEAT   = "ENDREPEAT"
	RETURN      = "RETURN"
	HALT        = "HALT"
	AND         = "AND"
	OR          = "OR"
	NOT         = "NOT"
	TRUE        = "TRUE"
	FALSE       = "FALSE"
	NOTHING     = "NOTHING"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
	Line     int
}

var keywords = map[string]TokenType{
	// constants
	"true":    TRUE,
	"false":   FALSE,
	"nothing": NOTHING,

	// declarations
	"function":    FUNCTION,
	"endfunction": ENDFUNCTION,
	"var":         VAR,

	// flow control
	"if":        IF,
	"elseif":    ELSEIF,
	"else":      ELSE,
	"endif":     ENDIF,
	"while":     WHILE,
	"endwhile":  ENDWHILE,
	"for":       FOR,
	"to":        TO,
	"step":      STEP,
	"endfor":    ENDFOR,
	"repeat":    REPEAT,
	"endrepeat": ENDREPEAT,
	"return":    RETURN,
	"halt":      HALT,

	// logic
	"and": AND,
	"or":  OR,
	"not": NOT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Describe renders a token type for error messages.
func Describe(t TokenType) string {
	switch t {
	case NEWLINE:
		return "end of line"
	case EOF:
		return "end of input"
	case IDENT:
		return "identifier"
	}
	if lower := strings.ToLower(string(t)); keywords[lower] == t {
		return "'" + lower + "'"
	}
	return string(t)
}
