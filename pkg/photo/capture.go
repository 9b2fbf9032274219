package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Capturer obtains an image from the host, e.g. a camera or a file picker.
// Implementations return ErrPermissionDenied when access is refused and
// ErrNoImageSelected when the user backs out.
type Capturer interface {
	Capture(ctx context.Context) (io.ReadCloser, error)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(ctx context.Context) (io.ReadCloser, error)

func (f CapturerFunc) Capture(ctx context.Context) (io.ReadCloser, error) { return f(ctx) }

// FileCapturer reads a photo from disk. An empty path counts as a cancelled
// capture.
type FileCapturer struct {
	Path string
}

func (c FileCapturer) Capture(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Path) == "" {
		return nil, ErrNoImageSelected
	}
	f, err := os.Open(filepath.Clean(c.Path))
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, c.Path)
		}
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return f, nil
}

// Capture runs the capturer and encodes the result.
func (e *Encoder) Capture(ctx context.Context, c Capturer) (Payload, error) {
	rc, err := c.Capture(ctx)
	if err != nil {
		return Payload{}, err
	}
	defer rc.Close()
	return e.Encode(rc)
}
