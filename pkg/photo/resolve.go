package photo

// FieldKind tells how a record field carries a photo.
type FieldKind int

const (
	// FieldLocator holds a ready-to-use URI.
	FieldLocator FieldKind = iota
	// FieldRaw holds a bare or prefixed base64 payload.
	FieldRaw
)

// FieldCandidate names one record field that may carry a photo.
type FieldCandidate struct {
	Name string
	Kind FieldKind
}

// Lookup returns the non-empty string value of a record field.
type Lookup func(name string) (string, bool)

// Resolve walks candidates in order and reconstructs the first photo found.
// The result is a data URI for raw payloads and the locator itself otherwise.
func Resolve(lookup Lookup, candidates []FieldCandidate, mediaType string) (Displayable, bool) {
	if lookup == nil {
		return Displayable{}, false
	}
	for _, c := range candidates {
		v, ok := lookup(c.Name)
		if !ok || v == "" {
			continue
		}
		switch c.Kind {
		case FieldLocator:
			return Displayable{URI: v, MediaType: mediaTypeOfLocator(v, mediaType)}, true
		default:
			return ToDisplayable(v, mediaType), true
		}
	}
	return Displayable{}, false
}
