package showdown

// Normalize converts a display name into its canonical ID: every byte
// outside [0-9a-zA-Z] is dropped and the rest is lowercased. Two display
// names refer to the same identity exactly when their normalized forms
// are equal. Normalize is total and idempotent; an empty input yields an
// empty ID.
//
// Multi-byte runes have no bytes in the ASCII alphanumeric range, so
// they are removed wholesale.
func Normalize(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z':
			buf = append(buf, c)
		case c >= 'A' && c <= 'Z':
			buf = append(buf, c+('a'-'A'))
		}
	}
	return string(buf)
}
