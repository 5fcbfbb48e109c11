package cache

import "errors"

var errBadPattern = errors.New("malformed pattern")

// checkGlob reports whether pattern is well formed: every class is closed
// and no escape is dangling.
func checkGlob(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if i+1 == len(pattern) {
				return errBadPattern
			}
			i++
		case '[':
			end := classEnd(pattern, i+1)
			if end < 0 {
				return errBadPattern
			}
			i = end
		}
	}
	return nil
}

// classEnd returns the index of the ']' closing a class whose body starts
// at i, or -1.
func classEnd(pattern string, i int) int {
	for ; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return -1
}

// matchGlob matches key against a Redis style glob. Matching is byte-wise
// and no separator is special: '*' spans any run of bytes, '/' and ':'
// included. pattern must have passed checkGlob.
func matchGlob(pattern, key string) bool {
	// star and its resume point in key, for backtracking
	starP, starK := -1, 0
	p, k := 0, 0
	for k < len(key) {
		if p < len(pattern) {
			switch c := pattern[p]; c {
			case '*':
				for p < len(pattern) && pattern[p] == '*' {
					p++
				}
				if p == len(pattern) {
					return true
				}
				starP, starK = p, k
				continue
			case '?':
				p++
				k++
				continue
			case '[':
				end := classEnd(pattern, p+1)
				if end >= 0 && matchClass(pattern[p+1:end], key[k]) {
					p = end + 1
					k++
					continue
				}
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == key[k] {
					p += 2
					k++
					continue
				}
			default:
				if c == key[k] {
					p++
					k++
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		starK++
		p, k = starP, starK
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass reports whether b is in the class body (between the brackets).
// A leading '^' negates it.
func matchClass(body string, b byte) bool {
	negate := len(body) > 0 && body[0] == '^'
	if negate {
		body = body[1:]
	}
	found := false
	for i := 0; i < len(body); i++ {
		lo := body[i]
		if lo == '\\' && i+1 < len(body) {
			i++
			lo = body[i]
		}
		hi := lo
		if i+2 < len(body) && body[i+1] == '-' {
			hi = body[i+2]
			if hi == '\\' && i+3 < len(body) {
				i++
				hi = body[i+2]
			}
			i += 2
			if lo > hi {
				lo, hi = hi, lo
			}
		}
		if b >= lo && b <= hi {
			found = true
		}
	}
	return found != negate
}
