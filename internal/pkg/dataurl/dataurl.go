// Package dataurl handles base64 data URLs of the form
// data:[<mediatype>];base64,<data>.
package dataurl

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/ds124wfegd/electrorescue/internal/entity"
)

var pattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// Parse splits a data URL into its MIME type and base64 payload.
// The payload is not decoded.
func Parse(s string) (mimeType, data string, err error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", entity.ErrInvalidImageFormat
	}
	return m[1], m[2], nil
}

// Decode parses the data URL and decodes its payload.
func Decode(s string) (string, []byte, error) {
	mimeType, data, err := Parse(s)
	if err != nil {
		return "", nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, entity.ErrInvalidImageFormat
	}
	return mimeType, raw, nil
}

func Encode(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
