package remote

import (
	"context"
	"encoding/json"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/photo"
	"github.com/fastygo/rentals/repository"
)

// photoFields lists where the store may put a property photo, in the order
// they are tried: an explicit locator first, then raw payload variants.
var photoFields = []photo.FieldCandidate{
	{Name: "fotoUrl", Kind: photo.FieldLocator},
	{Name: "foto", Kind: photo.FieldRaw},
	{Name: "fotoBase64", Kind: photo.FieldRaw},
	{Name: "imagemBase64", Kind: photo.FieldRaw},
}

const photoTypeField = "fotoContentType"

// propertyBody is the POST payload. Photo fields are always sent so that a
// null clears the stored photo.
type propertyBody struct {
	ID          domain.ID `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	Available   bool      `json:"disponivel"`
	Photo       *string   `json:"foto"`
	PhotoType   *string   `json:"fotoContentType"`
	PhotoName   *string   `json:"fotoNome"`
	PhotoURL    *string   `json:"fotoUrl"`
}

type propertyRepository struct {
	client *Client
}

// NewPropertyRepository returns the store-backed PropertyRepository.
func NewPropertyRepository(client *Client) repository.PropertyRepository {
	return &propertyRepository{client: client}
}

func (r *propertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	return r.list(ctx, resourceProperties)
}

func (r *propertyRepository) ListAvailable(ctx context.Context) ([]domain.Property, error) {
	return r.list(ctx, resourceProperties+"/disponiveis")
}

func (r *propertyRepository) list(ctx context.Context, path string) ([]domain.Property, error) {
	var body []json.RawMessage
	if err := r.client.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return decodeList(body, decodeProperty)
}

func (r *propertyRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Property, error) {
	if !id.IsSet() {
		return nil, domain.ErrPropertyNotFound
	}
	var rec record
	if err := r.client.get(ctx, itemPath(resourceProperties, id), &rec); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	if len(rec) == 0 {
		return nil, domain.ErrPropertyNotFound
	}
	p, err := decodeProperty(rec)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) Save(ctx context.Context, p domain.Property) (domain.Property, error) {
	var rec record
	if err := r.client.post(ctx, resourceProperties, encodeProperty(p), &rec); err != nil {
		return domain.Property{}, err
	}
	if len(rec) == 0 {
		return p, nil
	}
	return decodeProperty(rec)
}

func (r *propertyRepository) Delete(ctx context.Context, id domain.ID) error {
	if !id.IsSet() {
		return domain.ErrInvalidPayload
	}
	err := r.client.delete(ctx, itemPath(resourceProperties, id))
	if isNotFound(err) {
		return domain.ErrPropertyNotFound
	}
	return err
}

func encodeProperty(p domain.Property) propertyBody {
	body := propertyBody{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Available:   p.Available,
	}
	if p.Photo == nil {
		return body
	}
	switch {
	case p.Photo.Local != nil:
		local := p.Photo.Local
		body.Photo = strPtr(local.Data)
		body.PhotoType = strPtr(local.MediaType)
		body.PhotoName = strPtr(local.Filename)
	case p.Photo.Remote != "":
		// data URIs are re-sent as payloads, real locators by reference
		if data, mt, ok := photo.PayloadOf(p.Photo.Remote); ok {
			body.Photo = strPtr(data)
			body.PhotoType = strPtr(mt)
		} else {
			body.PhotoURL = strPtr(p.Photo.Remote)
		}
	}
	return body
}

func decodeProperty(r record) (domain.Property, error) {
	var (
		p   domain.Property
		err error
	)
	if p.ID, err = r.id("id"); err != nil {
		return domain.Property{}, err
	}
	p.Title, _ = r.str("titulo", "title")
	p.Description, _ = r.str("descricao", "description")
	if p.Available, _, err = r.boolean("disponivel", "available"); err != nil {
		return domain.Property{}, err
	}

	mediaType, ok := r.str(photoTypeField)
	if !ok {
		mediaType = photo.MediaTypeJPEG
	}
	if d, found := photo.Resolve(func(name string) (string, bool) { return r.str(name) }, photoFields, mediaType); found {
		p.Photo = domain.RemotePhoto(d.URI)
	}
	return p, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
