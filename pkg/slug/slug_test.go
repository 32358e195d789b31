package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"IT 101", "A"}, "it-101-a"},
		{[]string{"  CS-201 ", "BSIT 2B"}, "cs-201-bsit-2b"},
		{[]string{"Filipino", "Ñ"}, "filipino-n"},
		{[]string{"Réseaux", "1"}, "reseaux-1"},
		{[]string{"---", "***"}, "course"},
	}
	for _, c := range cases {
		if got := Make(c.in...); got != c.want {
			t.Errorf("Make(%q) = %q，期望 %q", c.in, got, c.want)
		}
	}
}

func TestMake_MaxLen(t *testing.T) {
	got := Make(strings.Repeat("a", 150))
	if len(got) != MaxLen {
		t.Errorf("期望长度 %d，实际 %d", MaxLen, len(got))
	}
}
