package showdown

import "unicode/utf8"

// Ranks is the authority scale, lowest to highest. Rank symbols are
// strings rather than runes because several of them are multi-byte.
var Ranks = []string{"+", "%", "☆", "@", "★", "*", "#", "&", "~"}

// RankBot is the rank from which a user may broadcast HTML and other
// rich content in a room.
const RankBot = "*"

// rankIndex returns the position of rank on the scale, or -1.
func rankIndex(rank string) int {
	for i, r := range Ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

// IsRank reports whether s is a symbol on the authority scale.
func IsRank(s string) bool {
	return rankIndex(s) >= 0
}

// leadingRank returns the rank symbol prefixing a display name, if any,
// and the name with that prefix removed.
func leadingRank(name string) (rank, rest string) {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError && size <= 1 {
		return "", name
	}
	sym := string(r)
	if !IsRank(sym) {
		return "", name
	}
	return sym, name[size:]
}

// Authority maps a rank symbol to the set of normalized user IDs known
// to hold that rank in one room.
type Authority map[string]map[string]struct{}

// Merge unions the given users into the set for each rank, creating
// rank entries as needed. Merge never removes a user from a rank it
// already recorded: a promotion or demotion shows up as the user being
// merged under the new rank while the old entry stays behind. That
// matches the server's incremental updates, which carry additions only.
func (a Authority) Merge(update map[string][]string) {
	for rank, users := range update {
		set, ok := a[rank]
		if !ok {
			set = make(map[string]struct{}, len(users))
			a[rank] = set
		}
		for _, u := range users {
			set[u] = struct{}{}
		}
	}
}

// UsersAtLeast returns the union of the user sets for every rank at or
// above the given rank on the scale. Passing a symbol that is not on
// the scale returns ErrUnknownRank.
func (a Authority) UsersAtLeast(rank string) (map[string]struct{}, error) {
	idx := rankIndex(rank)
	if idx < 0 {
		return nil, ErrUnknownRank
	}
	users := make(map[string]struct{})
	for _, r := range Ranks[idx:] {
		for u := range a[r] {
			users[u] = struct{}{}
		}
	}
	return users, nil
}
