package domain

import "strings"

// NormalizeTitle lowercases and strips all whitespace so "Google 바로가기"
// and "google바로가기" compare equal.
func NormalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// TitleMatch reports whether a and b, after normalization, contain each
// other in either direction. Empty inputs never match.
func TitleMatch(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
