// package ordering implements the fractional-indexing scheme for persisted tune order.
//
// Order tokens are strings over a 62-symbol byte-ordered alphabet. Sorting a
// session's pills by token must always agree with sorting by the legacy
// integer order number. Tokens are compared with raw byte ordering only; a
// locale-aware collation breaks the digit/letter ordering assumption.
package ordering

import (
	"fmt"
	"strings"

	"github.com/seisiun/tunelog/internal/shared"
)

// Alphabet is the token symbol set in byte order. The first symbol is
// reserved as a fraction digit and never terminates a token.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = len(Alphabet)

// Between returns a token strictly between prev and next in byte order.
//
// Either neighbor may be empty: an empty prev means start of sequence, an
// empty next means end of sequence. The first token of a sequence starts at
// the alphabet midpoint, reserving symbol space on both sides. A token grows
// a character, drawn from the midpoint of the remaining range, only when no
// single-character gap exists between the neighbors.
//
// Between is deterministic: the same neighbor pair always yields the same
// token. Callers must re-read prev and next from current state before every
// call; uniqueness comes from each insertion changing one of its neighbors,
// not from the function itself.
func Between(prev, next string) (string, error) {
	if prev != "" && !validToken(prev) {
		return "", fmt.Errorf("%w: bad token %q", shared.ErrInvalidInput, prev)
	}
	if next != "" && !validToken(next) {
		return "", fmt.Errorf("%w: bad token %q", shared.ErrInvalidInput, next)
	}
	if prev != "" && next != "" && prev >= next {
		return "", fmt.Errorf("%w: %q >= %q", shared.ErrTokenOrder, prev, next)
	}

	var b strings.Builder
	for i := 0; ; i++ {
		lo := digitAt(prev, i, 0)
		hi := base
		if next != "" {
			hi = digitAt(next, i, 0)
		}

		if lo == hi {
			b.WriteByte(Alphabet[lo])
			continue
		}

		if hi-lo > 1 {
			b.WriteByte(Alphabet[(lo+hi)/2])
			return b.String(), nil
		}

		// Adjacent symbols: copy the lower digit, then bisect between the
		// remaining prev suffix and the top of the range.
		b.WriteByte(Alphabet[lo])
		for j := i + 1; ; j++ {
			p := digitAt(prev, j, 0)
			mid := (p + base) / 2
			if mid > p {
				b.WriteByte(Alphabet[mid])
				return b.String(), nil
			}
			b.WriteByte(Alphabet[p])
		}
	}
}

// Rebalance regenerates a complete, evenly spaced token set for n pills.
//
// This is the explicit repair operation for duplicate or corrupted tokens; it
// is never triggered silently inside a normal edit.
func Rebalance(n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", shared.ErrInvalidArgument, n)
	}
	if n == 0 {
		return []string{}, nil
	}

	if n <= 30 {
		step := base / (n + 1)
		tokens := make([]string, n)
		for i := range tokens {
			tokens[i] = string(Alphabet[(i+1)*step])
		}
		return tokens, nil
	}

	// Wider sessions get fixed-width tokens with gaps of at least one full
	// symbol, so bumping a trailing zero digit can never collide.
	width := 1
	capacity := base
	for capacity/(n+1) < base {
		width++
		capacity *= base
	}
	step := capacity / (n + 1)

	tokens := make([]string, n)
	for i := range tokens {
		v := (i + 1) * step
		if v%base == 0 {
			v++
		}
		tokens[i] = encode(v, width)
	}
	return tokens, nil
}

// Validate checks a session's token sequence for duplicates and ordering
// violations. A failure is a fatal data-integrity condition to be logged and
// repaired via [Rebalance], not silently tolerated.
func Validate(tokens []string) error {
	seen := make(map[string]struct{}, len(tokens))
	for i, tok := range tokens {
		if !validToken(tok) {
			return fmt.Errorf("%w: bad token %q at index %d", shared.ErrInvalidInput, tok, i)
		}
		if _, dup := seen[tok]; dup {
			return fmt.Errorf("%w: %q", shared.ErrDuplicateToken, tok)
		}
		seen[tok] = struct{}{}
		if i > 0 && tokens[i-1] >= tok {
			return fmt.Errorf("%w: %q >= %q at index %d", shared.ErrTokenOrder, tokens[i-1], tok, i)
		}
	}
	return nil
}

// digitAt returns the alphabet index of s[i], or def when s is exhausted.
func digitAt(s string, i, def int) int {
	if i >= len(s) {
		return def
	}
	return strings.IndexByte(Alphabet, s[i])
}

// validToken reports whether tok is nonempty, drawn from the alphabet, and
// does not end with the reserved first symbol.
func validToken(tok string) bool {
	if tok == "" || tok[len(tok)-1] == Alphabet[0] {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if strings.IndexByte(Alphabet, tok[i]) < 0 {
			return false
		}
	}
	return true
}

// encode renders v as a fixed-width base-62 token.
func encode(v, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = Alphabet[v%base]
		v /= base
	}
	return string(buf)
}
