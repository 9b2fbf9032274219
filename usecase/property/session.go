package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/photo"
)

// EditSession holds a property form in progress, including the photo
// captured for it. The encoded photo lives only here until the session is
// saved or cancelled.
type EditSession struct {
	Title       string
	Description string
	Available   bool

	id      domain.ID
	photo   *domain.Photo
	encoder *photo.Encoder
	now     func() time.Time
	closed  bool
}

func newSession(p *domain.Property, encoder *photo.Encoder, now func() time.Time) *EditSession {
	s := &EditSession{
		Available: true,
		encoder:   encoder,
		now:       now,
	}
	if p != nil {
		s.id = p.ID
		s.Title = p.Title
		s.Description = p.Description
		s.Available = p.Available
		if p.Photo != nil {
			cp := *p.Photo
			s.photo = &cp
		}
	}
	return s
}

// ID is the identifier of the edited property; absent for a new one.
func (s *EditSession) ID() domain.ID { return s.id }

// Photo returns the photo the property will be saved with.
func (s *EditSession) Photo() *domain.Photo { return s.photo }

// Capture encodes an image from c and makes it the session photo. A cancelled
// capture leaves the session untouched.
func (s *EditSession) Capture(ctx context.Context, c photo.Capturer) error {
	if s.closed {
		return fmt.Errorf("%w: edit session closed", domain.ErrInvalidTransition)
	}
	payload, err := s.encoder.Capture(ctx, c)
	switch {
	case err == nil:
	case errors.Is(err, photo.ErrNoImageSelected):
		return nil
	case errors.Is(err, photo.ErrPermissionDenied):
		return domain.WrapError(domain.KindCapture, domain.ErrCodePermissionDenied, domain.ErrPermissionDenied.Message, err)
	default:
		return domain.WrapError(domain.KindCapture, domain.ErrCodeEncodeFailed, domain.ErrEncodeFailed.Message, err)
	}
	s.ReplacePhoto(payload)
	return nil
}

// ReplacePhoto attaches an already encoded payload.
func (s *EditSession) ReplacePhoto(p photo.Payload) {
	if p.Filename == "" {
		p.Filename = fmt.Sprintf("imovel_%d.jpg", s.now().UnixMilli())
	}
	if p.MediaType == "" {
		p.MediaType = photo.MediaTypeJPEG
	}
	s.photo = domain.LocalPhoto(p)
}

// RemovePhoto drops the photo; saving the session clears it in the store.
func (s *EditSession) RemovePhoto() {
	s.photo = nil
}

// Cancel discards the form and any encoded photo.
func (s *EditSession) Cancel() {
	s.photo = nil
	s.closed = true
}

// Closed reports whether the session was saved or cancelled.
func (s *EditSession) Closed() bool { return s.closed }

// Candidate is the property the session would persist.
func (s *EditSession) Candidate() domain.Property {
	return domain.Property{
		ID:          s.id,
		Title:       s.Title,
		Description: s.Description,
		Available:   s.Available,
		Photo:       s.photo,
	}
}

func (s *EditSession) commit(saved domain.Property) {
	s.id = saved.ID
	s.photo = saved.Photo
	s.closed = true
}
