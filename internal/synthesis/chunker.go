package synthesis

import (
	"strings"
	"unicode"
)

// ChunkText splits text into small, space-terminated chunks suitable for
// incremental synthesis. Sentences are split first, then each sentence is
// tokenized and grouped into chunks of at most maxWords real words. Every
// original character is preserved in order; the only characters ever added
// are trailing spaces at chunk boundaries.
//
// The function is pure and deterministic: identical input always produces
// the identical chunk sequence.
func ChunkText(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWordsPerChunk
	}

	var chunks []string
	for _, sentence := range splitSentences(text) {
		chunks = append(chunks, groupTokens(tokenize(sentence), maxWords)...)
	}

	// Every chunk must end in a trailing space, including the final chunk
	// of the final sentence.
	for i, c := range chunks {
		if !strings.HasSuffix(c, " ") {
			chunks[i] = c + " "
		}
	}
	return chunks
}

// terminators end a sentence. The danda terminates Devanagari text; newline
// both terminates a sentence and stays as its last character.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '।':
		return true
	}
	return false
}

// closers are absorbed into the sentence when they directly follow a
// terminator, so quoted sentences keep their closing quote.
func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}':
		return true
	}
	return false
}

func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, string(current))
			current = current[:0]
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current = append(current, r)

		if r == '\n' {
			flush()
			continue
		}
		if isTerminator(r) {
			if i+1 < len(runes) && isCloser(runes[i+1]) {
				i++
				current = append(current, runes[i])
			}
			flush()
		}
	}
	flush()
	return sentences
}

// token is one lexical unit of a sentence: either a maximal run of word
// runes or a single non-word rune.
type token struct {
	text string
	// word marks tokens that count toward the per-chunk word bound.
	// Apostrophe-only runs carry no alphanumerics and do not count.
	word bool
	// space marks single whitespace runes.
	space bool
}

// tokenize is a two-state scanner: inside a word run or at a boundary.
// Word runes are letters, digits, and the apostrophe; every other rune
// becomes its own token. Concatenating all token texts reproduces the
// sentence exactly.
func tokenize(sentence string) []token {
	var tokens []token
	var word []rune

	flushWord := func() {
		if len(word) == 0 {
			return
		}
		tokens = append(tokens, token{text: string(word), word: containsAlnum(word)})
		word = word[:0]
	}

	for _, r := range sentence {
		if isWordRune(r) {
			word = append(word, r)
			continue
		}
		flushWord()
		tokens = append(tokens, token{text: string(r), space: unicode.IsSpace(r)})
	}
	flushWord()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

func containsAlnum(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// groupTokens assembles tokens into chunks. A chunk closes on the token
// that brings it to maxWords real words; the following whitespace token is
// consumed into the chunk when present so the boundary keeps its original
// separator. Sentence leftovers below the bound form their own final chunk.
func groupTokens(tokens []token, maxWords int) []string {
	var chunks []string
	var current strings.Builder
	words := 0

	for i := 0; i < len(tokens); i++ {
		current.WriteString(tokens[i].text)
		if tokens[i].word {
			words++
		}
		if words < maxWords {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1].space {
			i++
			current.WriteString(tokens[i].text)
		}
		chunks = append(chunks, current.String())
		current.Reset()
		words = 0
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
