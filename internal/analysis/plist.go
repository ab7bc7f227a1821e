package analysis

import (
	"encoding/hex"
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"

	"howett.net/plist"
)

var (
	stringPattern = regexp.MustCompile(`<string>(.*?)</string>`)
	colorSuffix   = regexp.MustCompile(`\n\d+$`)

	errUndecodable = errors.New("undecodable property list")
)

// decodeTagPlist turns an attribute payload into tag names. The payload may
// be a binary or XML property list, or the hex dump of one.
func decodeTagPlist(data []byte) ([]string, error) {
	payload := data
	if decoded, ok := decodeHexText(data); ok {
		payload = decoded
	}

	var v interface{}
	format, err := plist.Unmarshal(payload, &v)
	if err == nil && (format == plist.BinaryFormat || format == plist.XMLFormat) {
		return finderLabels(stringLeaves(v, nil)), nil
	}

	tags := scanStrings(string(payload))
	if len(tags) == 0 {
		return nil, errUndecodable
	}
	return tags, nil
}

// decodeHexText decodes data when it is entirely hex digits and whitespace.
func decodeHexText(data []byte) ([]byte, bool) {
	compact := make([]byte, 0, len(data))
	for _, b := range data {
		switch {
		case unicode.IsSpace(rune(b)):
		case (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F'):
			compact = append(compact, b)
		default:
			return nil, false
		}
	}
	if len(compact) == 0 || len(compact)%2 != 0 {
		return nil, false
	}
	decoded, err := hex.DecodeString(string(compact))
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// stringLeaves collects every string value in a decoded property list.
func stringLeaves(v interface{}, acc []string) []string {
	switch val := v.(type) {
	case string:
		acc = append(acc, val)
	case []interface{}:
		for _, item := range val {
			acc = stringLeaves(item, acc)
		}
	case map[string]interface{}:
		for _, item := range val {
			acc = stringLeaves(item, acc)
		}
	}
	return acc
}

// scanStrings extracts the contents of every <string> element in markup.
func scanStrings(markup string) []string {
	var tags []string
	for _, m := range stringPattern.FindAllStringSubmatch(markup, -1) {
		if tag := strings.TrimSpace(html.UnescapeString(m[1])); tag != "" {
			tags = append(tags, tag)
		}
	}
	return finderLabels(tags)
}

// finderLabels strips the "\n<colour index>" suffix Finder appends to tags.
func finderLabels(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, colorSuffix.ReplaceAllString(t, ""))
	}
	return out
}
