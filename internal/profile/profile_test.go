package profile

import (
	"strings"
	"testing"
)

func TestResolveBuiltins(t *testing.T) {
	for _, name := range []string{"draft", "podcast", "HiFi"} {
		p, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", name, err)
		}
		if p.Name == "" || p.Fade == nil {
			t.Fatalf("Resolve(%s) returned incomplete profile", name)
		}
	}
}

func TestPodcastMatchesDefaultMargin(t *testing.T) {
	p, _ := Resolve("podcast")
	if !*p.Fade || p.FadeMargin == nil || *p.FadeMargin != 5 {
		t.Fatalf("podcast profile should crossfade with 5s margin")
	}
}

func TestResolveInvalid(t *testing.T) {
	_, err := Resolve("unknown-profile")
	if err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "draft") {
		t.Fatalf("error should list available profiles: %v", err)
	}
	if _, err := Resolve(" "); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if strings.Join(names, ",") != "draft,hifi,podcast" {
		t.Fatalf("unexpected names: %v", names)
	}
}
