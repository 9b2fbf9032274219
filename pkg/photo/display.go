package photo

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Displayable is a resource a client can render directly: a data URI or a
// remote locator.
type Displayable struct {
	URI       string `json:"uri"`
	MediaType string `json:"media_type,omitempty"`
}

var schemes = []string{"data:", "http://", "https://", "file://", "content://"}

// HasScheme reports whether s is already a usable locator.
func HasScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range schemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// ToDisplayable prefixes a bare base64 payload with a data URI header. Strings
// that already carry a scheme are returned unchanged. An empty mediaType is
// sniffed from the payload and falls back to image/jpeg.
func ToDisplayable(s, mediaType string) Displayable {
	s = strings.TrimSpace(s)
	if s == "" {
		return Displayable{}
	}
	if HasScheme(s) {
		return Displayable{URI: s, MediaType: mediaTypeOfLocator(s, mediaType)}
	}
	if mediaType == "" {
		mediaType = sniff(s)
	}
	return Displayable{
		URI:       "data:" + mediaType + ";base64," + s,
		MediaType: mediaType,
	}
}

// PayloadOf extracts the base64 body of a data URI. Non-data locators yield
// false.
func PayloadOf(uri string) (data, mediaType string, ok bool) {
	if !strings.HasPrefix(strings.ToLower(uri), "data:") {
		return "", "", false
	}
	header, body, found := strings.Cut(uri[len("data:"):], ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return "", "", false
	}
	return body, strings.TrimSuffix(header, ";base64"), true
}

func mediaTypeOfLocator(uri, fallback string) string {
	if _, mt, ok := PayloadOf(uri); ok && mt != "" {
		return mt
	}
	return fallback
}

func sniff(data string) string {
	// the first few hundred bytes are enough for magic-number detection
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = head[:len(head)/4*4]
	raw, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(raw) == 0 {
		return MediaTypeJPEG
	}
	mt := mimetype.Detect(raw).String()
	if !strings.HasPrefix(mt, "image/") {
		return MediaTypeJPEG
	}
	return mt
}
