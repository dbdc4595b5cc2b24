// Package frontend - Lexer for pyx source
// Design: Hand-written scanner, indentation tracked with a stack and a
// queue of pending INDENT/DEDENT tokens
package frontend

import (
	"fmt"
	"strings"
	"unicode"
)

type TokenType int

const (
	EOF TokenType = iota
	NEWLINE
	INDENT
	DEDENT
	ERROR

	// Literals
	INT
	FLOAT
	STRING
	NAME

	// Keywords
	DEF
	CDEF
	CPDEF
	CLASS
	RETURN
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	IS
	BREAK
	CONTINUE
	PASS
	RAISE
	TRY
	EXCEPT
	FINALLY
	WITH
	AS
	LAMBDA
	YIELD
	IMPORT
	CIMPORT
	FROM
	NONE
	TRUE
	FALSE
	AND
	OR
	NOT

	// Operators
	PLUS
	MINUS
	STAR
	DOUBLESTAR
	SLASH
	DOUBLESLASH
	PERCENT
	AMPER
	PIPE
	CARET
	TILDE
	LSHIFT
	RSHIFT
	EQ     // ==
	NE     // !=
	LT     // <
	LE     // <=
	GT     // >
	GE     // >=
	ASSIGN // =
	AUGASSIGN

	// Delimiters
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COLON
	SEMICOLON
	COMMA
	ARROW
	DOT
	AT
)

var keywords = map[string]TokenType{
	"def":      DEF,
	"cdef":     CDEF,
	"cpdef":    CPDEF,
	"class":    CLASS,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"is":       IS,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"raise":    RAISE,
	"try":      TRY,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"with":     WITH,
	"as":       AS,
	"lambda":   LAMBDA,
	"yield":    YIELD,
	"import":   IMPORT,
	"cimport":  CIMPORT,
	"from":     FROM,
	"None":     NONE,
	"True":     TRUE,
	"False":    FALSE,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
}

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case NEWLINE:
		return "newline"
	case INDENT:
		return "indent"
	case DEDENT:
		return "dedent"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

// Comment is a '#' comment. Leading is set for comments that come before
// the first token of the file.
type Comment struct {
	Text    string
	Line    int
	Leading bool
}

type Lexer struct {
	source []rune
	start  int
	pos    int
	line   int
	col    int

	// Position of the token being scanned
	startLine int
	startCol  int

	// Indentation stack for significant whitespace
	indents     []int
	pending     []Token
	atLineStart bool
	// Open brackets; newlines inside them are not significant
	depth   int
	emitted bool
	last    TokenType

	Comments []Comment
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source:      []rune(source),
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
		last:        NEWLINE,
	}
}

// Tokenize returns every token up to and including EOF. Lexical errors
// come back as ERROR tokens.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) Next() Token {
	tok := l.next()
	if tok.Type != EOF {
		l.emitted = true
	}
	l.last = tok.Type
	return tok
}

func (l *Lexer) next() Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok
		}

		if l.atLineStart && l.depth == 0 {
			l.atLineStart = false
			if tok, ok := l.handleIndent(); ok {
				return tok
			}
			continue
		}

		l.skipWhitespace()

		if l.isAtEnd() {
			// Close the last logical line, then emit pending DEDENTs
			if l.last != NEWLINE && l.last != DEDENT && l.last != INDENT {
				return Token{Type: NEWLINE, Line: l.line, Col: l.col}
			}
			if len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				return Token{Type: DEDENT, Line: l.line, Col: l.col}
			}
			return Token{Type: EOF, Line: l.line, Col: l.col}
		}

		l.start = l.pos
		l.startLine, l.startCol = l.line, l.col
		c := l.advance()

		switch c {
		case '\n':
			l.newline()
			if l.depth > 0 {
				continue
			}
			l.atLineStart = true
			return Token{Type: NEWLINE, Lexeme: "\n", Line: l.line - 1}
		case '\\':
			if l.peek() == '\n' {
				l.advance()
				l.newline()
				continue
			}
			return l.error("unexpected character after line continuation")
		case '+':
			return l.operator(PLUS, "+")
		case '-':
			if l.match('>') {
				return l.makeToken(ARROW, "->")
			}
			return l.operator(MINUS, "-")
		case '*':
			if l.match('*') {
				return l.makeToken(DOUBLESTAR, "**")
			}
			return l.operator(STAR, "*")
		case '/':
			if l.match('/') {
				return l.operator(DOUBLESLASH, "//")
			}
			return l.operator(SLASH, "/")
		case '%':
			return l.operator(PERCENT, "%")
		case '&':
			return l.makeToken(AMPER, "&")
		case '|':
			return l.makeToken(PIPE, "|")
		case '^':
			return l.makeToken(CARET, "^")
		case '~':
			return l.makeToken(TILDE, "~")
		case '(':
			l.depth++
			return l.makeToken(LPAREN, "(")
		case ')':
			l.close()
			return l.makeToken(RPAREN, ")")
		case '[':
			l.depth++
			return l.makeToken(LBRACKET, "[")
		case ']':
			l.close()
			return l.makeToken(RBRACKET, "]")
		case '{':
			l.depth++
			return l.makeToken(LBRACE, "{")
		case '}':
			l.close()
			return l.makeToken(RBRACE, "}")
		case ':':
			return l.makeToken(COLON, ":")
		case ';':
			return l.makeToken(SEMICOLON, ";")
		case ',':
			return l.makeToken(COMMA, ",")
		case '.':
			if unicode.IsDigit(l.peek()) {
				return l.number()
			}
			return l.makeToken(DOT, ".")
		case '@':
			return l.makeToken(AT, "@")
		case '=':
			if l.match('=') {
				return l.makeToken(EQ, "==")
			}
			return l.makeToken(ASSIGN, "=")
		case '!':
			if l.match('=') {
				return l.makeToken(NE, "!=")
			}
		case '<':
			if l.match('=') {
				return l.makeToken(LE, "<=")
			}
			if l.match('<') {
				return l.makeToken(LSHIFT, "<<")
			}
			return l.makeToken(LT, "<")
		case '>':
			if l.match('=') {
				return l.makeToken(GE, ">=")
			}
			if l.match('>') {
				return l.makeToken(RSHIFT, ">>")
			}
			return l.makeToken(GT, ">")
		case '\'', '"':
			return l.str(c)
		}

		if unicode.IsDigit(c) {
			return l.number()
		}

		if unicode.IsLetter(c) || c == '_' {
			return l.identifier()
		}

		return l.error(fmt.Sprintf("unexpected character: %c", c))
	}
}

// operator lexes op or its augmented form "op=".
func (l *Lexer) operator(typ TokenType, op string) Token {
	if l.match('=') {
		return l.makeToken(AUGASSIGN, op+"=")
	}
	return l.makeToken(typ, op)
}

func (l *Lexer) close() {
	if l.depth > 0 {
		l.depth--
	}
}

func (l *Lexer) newline() {
	l.line++
	l.col = 1
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\f' {
			l.advance()
		} else if c == '#' {
			l.comment()
		} else if c == '\n' && l.depth > 0 {
			l.advance()
			l.newline()
		} else {
			break
		}
	}
}

func (l *Lexer) comment() {
	start := l.pos
	line := l.line
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	l.Comments = append(l.Comments, Comment{
		Text:    string(l.source[start+1 : l.pos]),
		Line:    line,
		Leading: !l.emitted,
	})
}

// handleIndent measures the indentation of a new line. Blank and
// comment-only lines are skipped.
func (l *Lexer) handleIndent() (Token, bool) {
	for {
		spaces := 0
		for l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\f' {
			if l.peek() == '\t' {
				spaces += 8 - spaces%8
			} else if l.peek() == ' ' {
				spaces++
			}
			l.advance()
		}
		if l.peek() == '#' {
			l.comment()
		}
		if l.peek() == '\r' {
			l.advance()
		}
		if l.peek() == '\n' {
			l.advance()
			l.newline()
			continue
		}
		if l.isAtEnd() {
			return Token{}, false
		}

		startCol := l.col
		current := l.indents[len(l.indents)-1]

		if spaces > current {
			l.indents = append(l.indents, spaces)
			return Token{Type: INDENT, Line: l.line, Col: startCol}, true
		} else if spaces < current {
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > spaces {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, Token{Type: DEDENT, Line: l.line, Col: startCol})
			}
			if l.indents[len(l.indents)-1] != spaces {
				l.pending = append(l.pending, Token{
					Type:   ERROR,
					Lexeme: "unindent does not match any outer indentation level",
					Line:   l.line,
					Col:    startCol,
				})
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		}
		return Token{}, false
	}
}

func (l *Lexer) number() Token {
	typ := INT
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X' || l.peek() == 'o' || l.peek() == 'O' || l.peek() == 'b' || l.peek() == 'B') {
		l.advance()
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		return l.makeToken(INT, string(l.source[l.start:l.pos]))
	}
	if l.source[l.start] == '.' {
		typ = FLOAT
	}
	l.digits()
	if typ == INT && l.peek() == '.' {
		typ = FLOAT
		l.advance()
		l.digits()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		typ = FLOAT
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		l.digits()
	}
	for strings.ContainsRune("lLuU", l.peek()) && typ == INT {
		l.advance()
	}
	return l.makeToken(typ, string(l.source[l.start:l.pos]))
}

func (l *Lexer) digits() {
	for unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
}

func isHexDigit(c rune) bool {
	return unicode.IsDigit(c) || strings.ContainsRune("abcdefABCDEF", c)
}

func (l *Lexer) identifier() Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := string(l.source[l.start:l.pos])

	if (l.peek() == '\'' || l.peek() == '"') && isStringPrefix(text) {
		return l.str(l.advance())
	}

	if typ, ok := keywords[text]; ok {
		return l.makeToken(typ, text)
	}
	return l.makeToken(NAME, text)
}

func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "u", "b", "r", "br", "rb", "ur", "f":
		return true
	}
	return false
}

// str lexes a string literal whose opening quote has been consumed. The
// lexeme keeps the prefix and quotes; the parser decodes it.
func (l *Lexer) str(quote rune) Token {
	triple := false
	if l.peek() == quote && l.peekNext() == quote {
		l.advance()
		l.advance()
		triple = true
	}
	for {
		if l.isAtEnd() || !triple && l.peek() == '\n' {
			return l.unterminated()
		}
		c := l.advance()
		switch {
		case c == '\\' && !l.isAtEnd():
			if l.advance() == '\n' {
				l.newline()
			}
		case c == '\n':
			l.newline()
		case c == quote && !triple:
			return l.makeToken(STRING, string(l.source[l.start:l.pos]))
		case c == quote && l.peek() == quote && l.peekNext() == quote:
			l.advance()
			l.advance()
			return l.makeToken(STRING, string(l.source[l.start:l.pos]))
		}
	}
}

func (l *Lexer) unterminated() Token {
	return Token{Type: ERROR, Lexeme: "unterminated string literal", Line: l.startLine, Col: l.startCol}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return '\x00'
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	c := l.source[l.pos]
	l.pos++
	l.col++
	return c
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.pos++
	l.col++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) makeToken(typ TokenType, lexeme string) Token {
	return Token{
		Type:   typ,
		Lexeme: lexeme,
		Line:   l.startLine,
		Col:    l.startCol,
	}
}

func (l *Lexer) error(msg string) Token {
	return l.makeToken(ERROR, msg)
}
