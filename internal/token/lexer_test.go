package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexSimpleAssignment(t *testing.T) {
	toks, err := NewLexer("x = 10\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []Kind{IDENT, ASSIGN, INT, NEWLINE, EOF}, kinds(toks))
}

func TestLexNotIn(t *testing.T) {
	toks, err := NewLexer("role not in allowed\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []Kind{IDENT, NOT_IN, IDENT, NEWLINE, EOF}, kinds(toks))
}

func TestLexCompoundAssignOperators(t *testing.T) {
	toks, err := NewLexer("arr[0] += 10\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []Kind{IDENT, LBRACKET, INT, RBRACKET, PLUS_EQ, INT, NEWLINE, EOF}, kinds(toks))
}

func TestLexIndentDedent(t *testing.T) {
	src := "def f(x: int) -> int:\n    return x\ny = 1\n"
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)
	got := kinds(toks)
	require.Contains(t, got, INDENT)
	require.Contains(t, got, DEDENT)
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := NewLexer(`x = "a\nb"` + "\n").Tokenize()
	require.NoError(t, err)
	require.Equal(t, STRING, toks[2].Kind)
	assert.Equal(t, "a\nb", toks[2].Literal)
}

func TestLexMixedTabsSpacesErrors(t *testing.T) {
	_, err := NewLexer("if x:\n \tpass\n").Tokenize()
	assert.Error(t, err)
}

func TestLexPipeOperator(t *testing.T) {
	toks, err := NewLexer("x | f\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []Kind{IDENT, PIPE, IDENT, NEWLINE, EOF}, kinds(toks))
}

func TestLexComment(t *testing.T) {
	toks, err := NewLexer("x = 1 # comment\ny = 2\n").Tokenize()
	require.NoError(t, err)
	assert.NotContains(t, kinds(toks), STRING)
}
