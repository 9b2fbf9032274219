package domain

import "github.com/fastygo/rentals/pkg/photo"

// Property represents a rentable unit.
type Property struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
	Photo       *Photo `json:"photo,omitempty"`
}

// Photo is the single image attached to a property. Exactly one of Local and
// Remote is set: Local before the payload has been persisted, Remote once the
// store holds it.
type Photo struct {
	Local  *photo.Payload `json:"local,omitempty"`
	Remote string         `json:"remote,omitempty"`
}

// LocalPhoto wraps a freshly encoded payload.
func LocalPhoto(p photo.Payload) *Photo {
	return &Photo{Local: &p}
}

// RemotePhoto wraps a store-held locator.
func RemotePhoto(locator string) *Photo {
	if locator == "" {
		return nil
	}
	return &Photo{Remote: locator}
}
