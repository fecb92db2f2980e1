// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns comic titles into ASCII URL segments such as
// "solo-leveling" or "tham-tu-lung-danh".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps a slug so it fits the comics.slug column with room for a
// disambiguating suffix.
const MaxLength = 80

// Letters NFD does not decompose into a base letter plus a mark.
var unfoldable = strings.NewReplacer(
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"ß", "ss",
)

// From converts title into a lowercase, hyphen-separated ASCII slug.
// It returns "" when nothing in title survives the folding.
func From(title string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, unfoldable.Replace(title))
	if err != nil {
		folded = title
	}

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}

	return truncate(builder.String())
}

// truncate shortens s to MaxLength, cutting at the last word boundary.
func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	s = s[:MaxLength]
	if cut := strings.LastIndexByte(s, '-'); cut > 0 {
		s = s[:cut]
	}
	return strings.TrimRight(s, "-")
}
