package schema

import (
	"fmt"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		origin string
		number int
		slug   string
		want   string
	}{
		{"acme/widgets", 42, "fix-login", "acme-widgets#42-fix-login.md"},
		{"acme/widgets", 7, "", "acme-widgets#7.md"},
		{"solo", 1, "x", "solo#1-x.md"},
	}
	for _, tt := range tests {
		if got := Encode(tt.origin, tt.number, tt.slug); got != tt.want {
			t.Errorf("Encode(%q, %d, %q) = %q, want %q", tt.origin, tt.number, tt.slug, got, tt.want)
		}
	}
}

func TestDecodeRejectsLocalNames(t *testing.T) {
	names := []string{
		"fix-login.md",
		"notes.txt",
		"#42-x.md",
		"acme-widgets#.md",
		"acme-widgets#x-1.md",
		"acme-widgets#0-x.md",
		"acme-widgets#-3.md",
		"acme-widgets#42-x.json",
	}
	for _, n := range names {
		if d, ok := Decode(n); ok {
			t.Errorf("Decode(%q) = %+v, want not ok", n, d)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	origins := []string{"acme/widgets", "acme/my-repo", "octo/hello-world-app", "standalone"}
	slugs := []string{"", "fix-login", "2024-plan", "a"}

	for _, o := range origins {
		for n := 1; n <= 1000; n *= 10 {
			for _, s := range slugs {
				name := Encode(o, n, s)
				d, ok := Decode(name)
				if !ok {
					t.Fatalf("Decode(%q) failed", name)
				}
				want := Decoded{Origin: o, Number: n, TitleSlug: s}
				if d != want {
					t.Errorf("Decode(Encode(%q, %d, %q)) = %+v, want %+v", o, n, s, d, want)
				}
			}
		}
	}
}

func TestHyphenatedOwnerIsAmbiguous(t *testing.T) {
	// Known limitation: the owner's hyphen is read as the owner/repo separator.
	d, ok := Decode(Encode("my-org/repo", 3, "x"))
	if !ok {
		t.Fatal("expected decodable name")
	}
	if d.Origin != "my/org-repo" {
		t.Errorf("Origin = %q, want the documented ambiguous reading my/org-repo", d.Origin)
	}
}

func TestCodecResolvesConfiguredOrigins(t *testing.T) {
	c, err := NewCodec([]string{"my-org/repo", "acme/widgets"})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	d, ok := c.Decode(c.Encode("my-org/repo", 3, "x"))
	if !ok || d.Origin != "my-org/repo" || d.Number != 3 || d.TitleSlug != "x" {
		t.Errorf("Codec.Decode = %+v, %v", d, ok)
	}

	d, ok = c.Decode("other-thing#5.md")
	if !ok || d.Origin != "other/thing" {
		t.Errorf("fallback decode = %+v, %v", d, ok)
	}
}

func TestNewCodecRejectsCollisions(t *testing.T) {
	if _, err := NewCodec([]string{"a-b/c", "a/b-c"}); err == nil {
		t.Error("expected collision error")
	}
	if _, err := NewCodec([]string{"a/b#c"}); err == nil {
		t.Error("expected error for origin containing '#'")
	}
	if _, err := NewCodec([]string{"a/b", "a/b"}); err != nil {
		t.Errorf("duplicate identical origin should be accepted: %v", err)
	}
}

func TestTitleSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Fix login bug", "fix-login-bug"},
		{"  Crash: on start!! ", "crash-on-start"},
		{"Ünïcode Title", "ncode-title"},
		{"", ""},
		{"v1.2 release", "v1-2-release"},
	}
	for _, tt := range tests {
		if got := TitleSlug(tt.in); got != tt.want {
			t.Errorf("TitleSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := TitleSlug(fmt.Sprintf("%070d", 0))
	if len(long) > maxTitleSlug {
		t.Errorf("TitleSlug length = %d, want <= %d", len(long), maxTitleSlug)
	}
}

func ExampleEncode() {
	name := Encode("acme/widgets", 42, TitleSlug("Fix login bug"))
	d, _ := Decode(name)
	fmt.Println(name)
	fmt.Println(d.Origin, d.Number, d.TitleSlug)
	// Output:
	// acme-widgets#42-fix-login-bug.md
	// acme/widgets 42 fix-login-bug
}
