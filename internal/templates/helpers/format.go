package helpers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
)

// Count formats n with thousands separators and a singular or plural noun.
func Count(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), noun)
}

// CountOf describes how many of total items are shown.
func CountOf(visible, total int, singular, plural string) string {
	if visible == total {
		return Count(total, singular, plural)
	}
	return fmt.Sprintf("%s of %s", humanize.Comma(int64(visible)), Count(total, singular, plural))
}

// URLWithQuery appends the encoded query to path, omitting an empty "?".
func URLWithQuery(path string, query url.Values) string {
	encoded := query.Encode()
	if encoded == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + encoded
	}
	return path + "?" + encoded
}
