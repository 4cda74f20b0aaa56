package core

import "testing"

func TestValidateKey(t *testing.T) {
	good := map[string]string{
		"interventions/a/conclusion/p-1-x.jpg": "interventions/a/conclusion/p-1-x.jpg",
		"a//b/./c.jpg":                         "a/b/c.jpg",
		"photo..jpg":                           "photo..jpg",
	}
	for in, want := range good {
		got, err := ValidateKey(in)
		if err != nil || got != want {
			t.Fatalf("ValidateKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "  ", "/abs", "../up", "a/../../b"} {
		if _, err := ValidateKey(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestCloneMetadata(t *testing.T) {
	if CloneMetadata(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	in := map[string]string{"category": "conclusion"}
	out := CloneMetadata(in)
	out["category"] = "other"
	if in["category"] != "conclusion" {
		t.Fatalf("clone aliased input")
	}
}
