package domain

import (
	"strconv"
	"strings"

	"cartelera/internal/core/normalize"
)

var slugNorm = normalize.New()

// Slug derives the stable identifier for a movie from its title and year,
// e.g. ("Avatar: Fuego y Cenizas", 2025) -> "avatar-fuego-y-cenizas-2025"
func Slug(title string, year int) string {
	s := slugNorm.Normalize(title)

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	out := b.String()
	if year > 0 {
		if out == "" {
			return strconv.Itoa(year)
		}
		return out + "-" + strconv.Itoa(year)
	}
	return out
}
