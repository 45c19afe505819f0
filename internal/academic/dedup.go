package academic

import "strings"

// TitleSlug lower-cases a title and strips everything but a-z, yielding the
// key used for near-duplicate matching across bibliographic sources. Returns
// "" for empty or fully non-alphabetic titles.
func TitleSlug(title string) string {
	if title == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(title))
	for _, ch := range strings.ToLower(title) {
		if ch >= 'a' && ch <= 'z' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
