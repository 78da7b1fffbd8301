package metadatacache

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key builds the normalized cache key for a metadata query. Equivalent
// queries collide to the same key regardless of casing and surrounding
// whitespace: the media type is lowercased ("unknown" when empty), the
// title lowercased and trimmed, and the year stringified ("0" when absent).
func Key(mediaType, title string, year int) string {
	mt := strings.TrimSpace(mediaType)
	if mt == "" {
		mt = "unknown"
	} else {
		mt = cases.Lower(language.Und).String(mt)
	}

	normalizedTitle := strings.TrimSpace(cases.Lower(language.Und).String(title))

	yearStr := "0"
	if year != 0 {
		yearStr = strconv.Itoa(year)
	}

	return mt + "|" + normalizedTitle + "|" + yearStr
}
