package money_test

import (
	"testing"

	"lootledger/internal/platform/money"
)

func TestFormat(t *testing.T) {
	t.Parallel()
	cases := map[int64]string{
		0:       "0c",
		7:       "7c",
		250:     "2s 50c",
		1203040: "120g 30s 40c",
		-1005:   "-10s 05c",
	}
	for in, want := range cases {
		if got := money.Format(in); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	cases := map[string]int64{
		"1250":         1250,
		"-40":          -40,
		"12g 3s 40c":   120340,
		"2s50c":        250,
		"-1g":          -10000,
		"120g 30s 40c": 1203040,
	}
	for in, want := range cases {
		got, err := money.Parse(in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "g", "12x", "1g2", "--5c"} {
		if _, err := money.Parse(bad); err == nil {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
}
