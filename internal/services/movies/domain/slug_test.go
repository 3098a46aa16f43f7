package domain

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		title string
		year  int
		want  string
	}{
		{"Avatar: Fuego y Cenizas", 2025, "avatar-fuego-y-cenizas-2025"},
		{"Crónicas de una Pasión", 0, "cronicas-de-una-pasion"},
		{"  Weird   Spacing  ", 2024, "weird-spacing-2024"},
		{"¡¿!?", 2024, "2024"},
		{"100% Lobo", 2020, "100-lobo-2020"},
	}
	for _, c := range cases {
		if got := Slug(c.title, c.year); got != c.want {
			t.Fatalf("Slug(%q, %d) = %q, want %q", c.title, c.year, got, c.want)
		}
	}
}
