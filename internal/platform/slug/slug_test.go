package slug_test

import (
	"testing"

	"lootledger/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Thrall-Durotan":       "thrall-durotan",
		"  Jaïna  Proudmoore ": "jaïna-proudmoore",
		"!!!":                  "unnamed",
		"a--b__c":              "a-b-c",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}
