package message

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// decodeCharset converts content from the declared charset to UTF-8.
// Unknown charsets and undecodable content are returned unchanged.
func decodeCharset(content []byte, charset string) string {
	charset = strings.ToLower(strings.Trim(strings.TrimSpace(charset), `"`))
	switch charset {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return string(content)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(content)
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil || !utf8.Valid(decoded) {
		return string(content)
	}
	return string(decoded)
}
