package effects

import (
	"strings"
	"unicode"

	"github.com/nvandessel/ox500/internal/prng"
)

var leet = map[rune]string{
	'A': "@", 'B': "8", 'C': "(", 'D': "|)", 'E': "3", 'F': "f", 'G': "6",
	'H': "#", 'I': "1", 'J': "]", 'K': "|<", 'L': "|_", 'M': `/\/\`,
	'N': `/\/`, 'O': "0", 'P': "|*", 'Q': "0_", 'R': "|2", 'S': "$",
	'T': "+", 'U': "|_|", 'V': `\/`, 'W': `\/\/`, 'X': "><", 'Y': "`/",
	'Z': "2",
}

// Tokens shown in place of a diagnostics value by semantic corruption.
var SemanticTokens = []string{"+INF", "NaN", "????", "-847 YEARS", "OVERFLOW", "NULL"}

// Reassuring values shown by a status contradiction.
var (
	ContradictionPhases     = []string{"NOMINAL", "STABLE", "CALM"}
	ContradictionTransients = []string{"SYSTEM HEALTH: OK", "COHERENCE LOCK ACQUIRED", "RECOVERY: NOT REQUIRED"}
)

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// CorruptOneChar replaces one randomly chosen ASCII letter of text with its
// lookalike glyph sequence. Lowercase letters get a lowercased replacement.
// Text without letters is returned unchanged and draws nothing from rng.
func CorruptOneChar(rng *prng.Source, text string) string {
	runes := []rune(text)
	var letters []int
	for i, r := range runes {
		if isASCIILetter(r) {
			letters = append(letters, i)
		}
	}
	if len(letters) == 0 {
		return text
	}

	idx := letters[rng.PickIndex(len(letters))]
	c := runes[idx]
	upper := unicode.ToUpper(c)
	repl, ok := leet[upper]
	if !ok {
		repl = string(c)
	}
	if c != upper {
		repl = strings.ToLower(repl)
	}

	var b strings.Builder
	b.WriteString(string(runes[:idx]))
	b.WriteString(repl)
	b.WriteString(string(runes[idx+1:]))
	return b.String()
}

// blinkDigits swaps 0 for 8 and every other digit for 0.
func blinkDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '0':
			return '8'
		case r >= '1' && r <= '9':
			return '0'
		}
		return r
	}, s)
}
