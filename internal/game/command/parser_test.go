package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("status")
	assert.Equal(t, "status", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("CAST")
	assert.Equal(t, "cast", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("cast wind cutter")
	assert.Equal(t, "cast", result.Command)
	assert.Equal(t, []string{"wind", "cutter"}, result.Args)
	assert.Equal(t, "wind cutter", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  cast   water   blast  ")
	assert.Equal(t, "cast", result.Command)
	assert.Equal(t, []string{"water", "blast"}, result.Args)
	assert.Equal(t, "water blast", result.RawArgs)
}

func TestParse_TabsSeparateWords(t *testing.T) {
	result := Parse("target\t2")
	assert.Equal(t, "target", result.Command)
	assert.Equal(t, "2", result.RawArgs)
}

func TestParse_AliasIsNotExpanded(t *testing.T) {
	result := Parse("t")
	assert.Equal(t, "t", result.Command)
}

func TestParse_ArgumentCaseIsPreserved(t *testing.T) {
	result := Parse("target Enemy0")
	assert.Equal(t, "target", result.Command)
	assert.Equal(t, []string{"Enemy0"}, result.Args)
	assert.Equal(t, "Enemy0", result.RawArgs)
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseRawArgsMatchesArgs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z0-9]{1,8}`), 1, 6).Draw(t, "words")
		sep := rapid.SampledFrom([]string{" ", "  ", "\t", " \t "}).Draw(t, "sep")
		result := Parse(strings.Join(words, sep))
		if result.RawArgs != strings.Join(result.Args, " ") {
			t.Fatalf("RawArgs %q does not match Args %q", result.RawArgs, result.Args)
		}
		if len(result.Args) != len(words)-1 {
			t.Fatalf("got %d args, want %d", len(result.Args), len(words)-1)
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		result := Parse(word)
		if result.Command == "" {
			t.Fatalf("non-empty input %q produced empty command", word)
		}
	})
}
