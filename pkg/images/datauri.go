package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/url"
	"strings"
)

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURI extracts the payload of a data: URI. Both base64 and
// percent-encoded payloads are accepted.
func ParseDataURI(uri string) (data []byte, mediaType string, err error) {
	if !IsDataURI(uri) {
		return nil, "", fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI: missing comma")
	}

	isBase64 := false
	params := strings.Split(header, ";")
	mediaType = strings.TrimSpace(params[0])
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		// Whitespace is common in hand-written URIs
		payload = strings.Join(strings.Fields(payload), "")
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decoding base64 payload: %w", err)
		}
		return data, mediaType, nil
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding payload: %w", err)
	}
	return []byte(s), mediaType, nil
}

// LoadImageFromDataURI decodes an image embedded in a data: URI.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	data, _, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding data URI image: %w", err)
	}
	return img, nil
}
