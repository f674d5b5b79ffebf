// Package namemeta derives catalog metadata from media filenames. Leading
// marker characters encode a priority rating; the remainder of the name,
// minus its extension, becomes the initial title.
package namemeta

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMarker is the filename priority marker recognized out of the box.
const DefaultMarker = '!'

// Parser derives title and star metadata from filenames using a configured
// marker rune.
type Parser struct {
	marker rune
}

// NewParser builds a parser for the given marker character. An empty marker
// string falls back to DefaultMarker.
func NewParser(marker string) Parser {
	r := DefaultMarker
	for _, c := range marker {
		r = c
		break
	}
	return Parser{marker: r}
}

// MarkerCount returns the number of consecutive marker characters at the
// start of the filename.
func (p Parser) MarkerCount(filename string) int {
	count := 0
	for _, r := range filename {
		if r != p.marker {
			break
		}
		count++
	}
	return count
}

// Stars maps a filename's leading marker count to a star rating. One marker
// means two stars; each additional marker adds one, capped at five. No
// markers means unrated.
func (p Parser) Stars(filename string) int {
	count := p.MarkerCount(filename)
	switch {
	case count == 0:
		return 0
	case count >= 4:
		return 5
	default:
		return count + 1
	}
}

// Title returns the filename with leading markers and the extension stripped.
func (p Parser) Title(filename string) string {
	base := strings.TrimLeft(filename, string(p.marker))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(base)
}

// Parse derives the initial title and star rating for a newly catalogued
// file.
func (p Parser) Parse(filename string) (title string, stars int) {
	return p.Title(filename), p.Stars(filename)
}

// DisplayTitle normalizes a stored title for presentation. Separator runs
// collapse to single spaces and words are title-cased.
func DisplayTitle(title string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	result := strings.TrimSpace(cleaned.String())
	if result == "" {
		return title
	}
	return cases.Title(language.Und).String(result)
}
