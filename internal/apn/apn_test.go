package apn

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"123-45 .678", "12345678"},
		{"12345678", "12345678"},
		{"  123 45 678  ", "12345678"},
		{"ABC-12.34", "abc1234"},
		{"R12345-001-B", "r12345001b"},
		{"- . -", ""},
		{"12\t34\n56", "123456"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_EquivalenceClasses(t *testing.T) {
	same := []string{"123-45-678", "123.45.678", "123 45 678", "12345678", "123-45 .678"}
	for _, s := range same {
		if Normalize(s) != "12345678" {
			t.Errorf("Normalize(%q) = %q, want 12345678", s, Normalize(s))
		}
	}
	if Normalize("123-45-679") == Normalize("123-45-678") {
		t.Error("distinct digit sequences must not normalize equal")
	}
}
