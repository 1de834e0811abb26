package cartula

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invisibleReplacer removes or flattens characters that spreadsheet exports
// and wiki copy-paste leave in cells. Built once; strings.Replacer is safe
// for concurrent use.
var invisibleReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space → space
	"\u2007", " ", // figure space → space
	"\u202f", " ", // narrow no-break space → space
	"\u200b", "", // zero width space
	"\u200c", "", // zero width non-joiner
	"\u200d", "", // zero width joiner
	"\u2060", "", // word joiner
	"\ufeff", "", // byte order mark
	"\u2019", "'", // right single quotation mark → apostrophe
	"\u02bc", "'", // modifier letter apostrophe → apostrophe
)

// DefaultCutset is stripped from both ends of every cell unless the source
// options say otherwise.
const DefaultCutset = " \t\r"

// CleanCell composes the cell text to NFC, flattens invisible characters
// and trims cutset from both ends.
func CleanCell(s, cutset string) string {
	s = norm.NFC.String(s)
	s = invisibleReplacer.Replace(s)
	return strings.Trim(s, cutset)
}

// IsBlank reports whether a cleaned cell carries no text.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
