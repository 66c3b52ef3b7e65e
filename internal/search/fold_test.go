package search

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "MacBook Pro", "macbook pro"},
		{"strips diacritics", "Crème Brûlée", "creme brulee"},
		{"collapses whitespace", "  gaming   laptop ", "gaming laptop"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"mixed", "  CAFÉ  Noir ", "cafe noir"},
		{"digits untouched", "USB-C 100W", "usb-c 100w"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fold(tc.in); got != tc.want {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFold_Idempotent(t *testing.T) {
	in := "Crème  Brûlée"
	once := Fold(in)
	if twice := Fold(once); twice != once {
		t.Fatalf("Fold not idempotent: %q -> %q", once, twice)
	}
}
