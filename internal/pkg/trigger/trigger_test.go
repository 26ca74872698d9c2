package trigger

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain lowercase", "code", "code"},
		{"uppercase folds", "CODE", "code"},
		{"inner spaces collapse", "get code", "getcode"},
		{"tabs and newlines collapse", "get\tcode\n", "getcode"},
		{"nbsp collapses", "get code", "getcode"},
		{"zero width space stripped", "co​de", "code"},
		{"zero width joiner stripped", "co‍de", "code"},
		{"bidi override stripped", "‮code‬", "code"},
		{"word joiner stripped", "co⁠de", "code"},
		{"soft hyphen stripped", "co­de", "code"},
		{"variation selector stripped", "code️", "code"},
		{"nfkc fullwidth folds", "ｃｏｄｅ", "code"},
		{"nfkc ligature folds", "oﬃce", "office"},
		{"cyrillic keeps identity", "Код", "код"},
		{"empty stays empty", "", ""},
		{"only invisibles become empty", "​‌ ⁠", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"!Steam", "GET CODE", "get code", "co​de", "‮code‬",
		"ｃｏｄｅ", "oﬃce", "Код", "!ta​ken‍", "",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize(Normalize(%q)) = %q, want %q", raw, twice, once)
		}
	}
}

func TestNormalizeHomoglyphsStayDistinct(t *testing.T) {
	// Latin "c" and Cyrillic "с" look alike, but normalization must not
	// merge different letters.
	if Normalize("code") == Normalize("сode") {
		t.Fatal("latin and cyrillic lookalikes must normalize differently")
	}
}

func TestReserved(t *testing.T) {
	for _, phrase := range []string{"guard_menu", "/guard_menu"} {
		if !Reserved(Normalize(phrase)) {
			t.Fatalf("expected %q to be reserved", phrase)
		}
	}
	if Reserved(Normalize("GUARD_MENU extra")) {
		t.Fatal("a longer phrase must not be reserved")
	}
	if !Reserved(Normalize("Guard_Menu")) {
		t.Fatal("reservation check must run on normalized input")
	}
	if !Reserved(Normalize("//guard_menu")) {
		t.Fatal("leading slashes must not disguise a reserved phrase")
	}
}
