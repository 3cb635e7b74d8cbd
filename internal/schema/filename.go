package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Ext is the extension of every task file.
const Ext = ".md"

// maxTitleSlug bounds the title part of a synced filename.
const maxTitleSlug = 60

// Decoded is the identity recovered from a synced filename.
type Decoded struct {
	Origin    string
	Number    int
	TitleSlug string
}

// EncodeOrigin returns the filename shorthand of an origin: "owner/repo"
// becomes "owner-repo".
func EncodeOrigin(origin string) string {
	return strings.ReplaceAll(origin, "/", "-")
}

// Encode builds the synced filename for a remote record:
// {origin-with-hyphens}#{number}-{titleSlug}.md
//
// An empty titleSlug yields {origin-with-hyphens}#{number}.md.
func Encode(origin string, number int, titleSlug string) string {
	if titleSlug == "" {
		return fmt.Sprintf("%s#%d%s", EncodeOrigin(origin), number, Ext)
	}
	return fmt.Sprintf("%s#%d-%s%s", EncodeOrigin(origin), number, titleSlug, Ext)
}

// Decode parses a synced filename. It returns false for any name that does
// not have the synced shape, which is how local-only files are recognized.
//
// The origin is rebuilt by turning the first hyphen of the shorthand back
// into a slash. Owners that contain hyphens therefore do not round-trip
// ("my-org/repo" decodes as "my/org-repo"); Codec resolves this against the
// configured repositories.
func Decode(filename string) (Decoded, bool) {
	shorthand, number, slug, ok := split(filename)
	if !ok {
		return Decoded{}, false
	}
	return Decoded{Origin: decodeOrigin(shorthand), Number: number, TitleSlug: slug}, true
}

func split(filename string) (shorthand string, number int, slug string, ok bool) {
	if !strings.HasSuffix(filename, Ext) {
		return "", 0, "", false
	}
	stem := strings.TrimSuffix(filename, Ext)

	shorthand, rest, found := strings.Cut(stem, "#")
	if !found || shorthand == "" || rest == "" {
		return "", 0, "", false
	}

	digits := rest
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		digits, slug = rest[:i], rest[i+1:]
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return "", 0, "", false
	}
	number, err := strconv.Atoi(digits)
	if err != nil || number <= 0 {
		return "", 0, "", false
	}
	return shorthand, number, slug, true
}

func decodeOrigin(shorthand string) string {
	owner, repo, found := strings.Cut(shorthand, "-")
	if !found || owner == "" || repo == "" {
		return shorthand
	}
	return owner + "/" + repo
}

// TitleSlug turns a title into the display part of a filename: lowercase
// ASCII letters and digits separated by single hyphens.
func TitleSlug(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if (unicode.IsSpace(r) || unicode.IsPunct(r) || r == '-') && !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxTitleSlug {
		slug = strings.TrimRight(slug[:maxTitleSlug], "-")
	}
	return slug
}

// Codec decodes synced filenames against the configured origins, which
// removes the hyphenated-owner ambiguity as long as no two origins share a
// shorthand.
type Codec struct {
	byShorthand map[string]string
}

// NewCodec builds a Codec for the given origins. It fails when two origins
// encode to the same shorthand, because such files could not be told apart.
func NewCodec(origins []string) (*Codec, error) {
	c := &Codec{byShorthand: make(map[string]string, len(origins))}
	for _, o := range origins {
		if strings.Contains(o, "#") {
			return nil, fmt.Errorf("origin %q must not contain '#'", o)
		}
		sh := EncodeOrigin(o)
		if prev, exists := c.byShorthand[sh]; exists && prev != o {
			return nil, fmt.Errorf("origins %q and %q share the filename shorthand %q", prev, o, sh)
		}
		c.byShorthand[sh] = o
	}
	return c, nil
}

// Decode is like the package-level Decode but prefers configured origins.
func (c *Codec) Decode(filename string) (Decoded, bool) {
	shorthand, number, slug, ok := split(filename)
	if !ok {
		return Decoded{}, false
	}
	origin, known := c.byShorthand[shorthand]
	if !known {
		origin = decodeOrigin(shorthand)
	}
	return Decoded{Origin: origin, Number: number, TitleSlug: slug}, true
}

// Encode mirrors the package-level Encode.
func (c *Codec) Encode(origin string, number int, titleSlug string) string {
	return Encode(origin, number, titleSlug)
}
