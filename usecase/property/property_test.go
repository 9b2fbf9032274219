package property

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/internal/storetest"
	"github.com/fastygo/rentals/pkg/photo"
	"github.com/fastygo/rentals/repository/remote"
)

func newUseCase(t *testing.T) (*storetest.Server, *UseCase) {
	t.Helper()
	store := storetest.New()
	client, err := remote.NewClient(remote.Options{BaseURL: storetest.BaseURL, Dial: store.Dial})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		_ = store.Close()
	})
	uc := New(remote.NewPropertyRepository(client), remote.NewContractRepository(client), photo.NewEncoder(64, 80), nil)
	uc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return store, uc
}

func pngCapturer(t *testing.T, w, h int) photo.Capturer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return photo.CapturerFunc(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
	})
}

func TestSaveRejectsBlankTitleWithoutStoreCall(t *testing.T) {
	store, uc := newUseCase(t)

	s := uc.Edit(nil)
	s.Title = "   "
	_, _, err := uc.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Empty(t, store.Requests())
	assert.False(t, s.Closed())
}

func TestSaveCreatesAndReloads(t *testing.T) {
	store, uc := newUseCase(t)

	s := uc.Edit(nil)
	s.Title = " Casa Azul "
	saved, snapshot, err := uc.Save(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, saved.ID.IsSet())
	assert.Equal(t, "Casa Azul", saved.Title)
	assert.True(t, saved.Available)
	require.Len(t, snapshot, 1)
	assert.True(t, s.Closed())

	var calls []string
	for _, r := range store.Requests() {
		calls = append(calls, r.Method+" "+r.Path)
	}
	assert.Equal(t, []string{"GET /imovel", "POST /imovel", "GET /imovel"}, calls)
}

func TestSaveRefusesAvailabilityWhileRented(t *testing.T) {
	store, uc := newUseCase(t)
	id := store.Seed(storetest.Properties, storetest.Record{"titulo": "Casa", "disponivel": false})
	store.Seed(storetest.Contracts, storetest.Record{"imovelId": id, "status": "ATIVO"})

	p, err := uc.Get(context.Background(), domain.NewID(id))
	require.NoError(t, err)

	s := uc.Edit(p)
	s.Available = true
	_, _, err = uc.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrAvailabilityLocked)
	assert.Empty(t, store.Mutations())

	s.Available = false
	s.Description = "reformada"
	saved, _, err := uc.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "reformada", saved.Description)
}

func TestCaptureAttachesEncodedPhoto(t *testing.T) {
	store, uc := newUseCase(t)

	s := uc.Edit(nil)
	s.Title = "Loft"
	require.NoError(t, s.Capture(context.Background(), pngCapturer(t, 200, 100)))
	require.NotNil(t, s.Photo())
	require.NotNil(t, s.Photo().Local)
	assert.Equal(t, 64, s.Photo().Local.Width)
	assert.Equal(t, "imovel_1700000000000.jpg", s.Photo().Local.Filename)

	saved, _, err := uc.Save(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, saved.Photo)
	assert.Contains(t, saved.Photo.Remote, "data:image/jpeg;base64,")

	rec, ok := store.Get(storetest.Properties, saved.ID.Int64())
	require.True(t, ok)
	assert.Equal(t, "imovel_1700000000000.jpg", rec["fotoNome"])
}

func TestCaptureCancelledIsNoOp(t *testing.T) {
	_, uc := newUseCase(t)
	s := uc.Edit(&domain.Property{ID: domain.NewID(1), Title: "x", Photo: domain.RemotePhoto("https://cdn/a.jpg")})

	require.NoError(t, s.Capture(context.Background(), photo.FileCapturer{}))
	assert.Equal(t, "https://cdn/a.jpg", s.Photo().Remote)
}

func TestCapturePermissionDeniedIsUserVisible(t *testing.T) {
	_, uc := newUseCase(t)
	s := uc.Edit(nil)

	denied := photo.CapturerFunc(func(context.Context) (io.ReadCloser, error) {
		return nil, photo.ErrPermissionDenied
	})
	err := s.Capture(context.Background(), denied)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.ErrorIs(t, err, photo.ErrPermissionDenied)
	assert.True(t, domain.IsKind(err, domain.KindCapture))
	assert.Nil(t, s.Photo())
}

func TestCaptureUndecodableSource(t *testing.T) {
	_, uc := newUseCase(t)
	s := uc.Edit(nil)

	garbage := photo.CapturerFunc(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("not an image"))), nil
	})
	assert.ErrorIs(t, s.Capture(context.Background(), garbage), domain.ErrEncodeFailed)
}

func TestRemovePhotoClearsStoredPhoto(t *testing.T) {
	store, uc := newUseCase(t)
	id := store.Seed(storetest.Properties, storetest.Record{"titulo": "Casa", "foto": "QUJD"})

	p, err := uc.Get(context.Background(), domain.NewID(id))
	require.NoError(t, err)
	s := uc.Edit(p)
	s.RemovePhoto()

	saved, _, err := uc.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, saved.Photo)
	rec, _ := store.Get(storetest.Properties, id)
	assert.Nil(t, rec["foto"])
}

func TestCancelDiscardsSession(t *testing.T) {
	store, uc := newUseCase(t)
	s := uc.Edit(nil)
	s.Title = "Casa"
	require.NoError(t, s.Capture(context.Background(), pngCapturer(t, 10, 10)))

	s.Cancel()
	assert.Nil(t, s.Photo())
	_, _, err := uc.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Error(t, s.Capture(context.Background(), pngCapturer(t, 10, 10)))
	assert.Empty(t, store.Requests())
}

func TestRemoveRefusedWhileContractPending(t *testing.T) {
	store, uc := newUseCase(t)
	id := store.Seed(storetest.Properties, storetest.Record{"titulo": "Casa"})
	store.Seed(storetest.Contracts, storetest.Record{"imovelId": id, "status": "PENDENTE"})

	_, err := uc.Remove(context.Background(), domain.Property{ID: domain.NewID(id)})
	assert.ErrorIs(t, err, domain.ErrPropertyInUse)
	assert.Empty(t, store.Mutations())
}

func TestRemoveReloads(t *testing.T) {
	store, uc := newUseCase(t)
	id := store.Seed(storetest.Properties, storetest.Record{"titulo": "Casa"})
	store.Seed(storetest.Properties, storetest.Record{"titulo": "Sala"})

	snapshot, err := uc.Remove(context.Background(), domain.Property{ID: domain.NewID(id)})
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Sala", snapshot[0].Title)
}

func TestTransportFailureSurfacesVerbatim(t *testing.T) {
	store, uc := newUseCase(t)
	store.Fail(http.MethodPost, storetest.Properties, http.StatusInternalServerError, "disk full")

	s := uc.Edit(nil)
	s.Title = "Casa"
	_, _, err := uc.Save(context.Background(), s)
	var tErr *domain.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "disk full", tErr.Body)
	assert.False(t, s.Closed())
	assert.Len(t, store.Mutations(), 1)
}

func TestSummaryAndReconcile(t *testing.T) {
	store, uc := newUseCase(t)
	rented := store.Seed(storetest.Properties, storetest.Record{"titulo": "A", "disponivel": true})
	store.Seed(storetest.Properties, storetest.Record{"titulo": "B", "disponivel": true})
	store.Seed(storetest.Properties, storetest.Record{"titulo": "C", "disponivel": false})
	store.Seed(storetest.Contracts, storetest.Record{"imovelId": rented, "status": "ATIVO"})
	ctx := context.Background()

	summary, err := uc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Rented)
	assert.Equal(t, 1, summary.Available)
	assert.Equal(t, 1, summary.Unavailable)

	fixed, err := uc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, fixed, 2)
	rec, _ := store.Get(storetest.Properties, rented)
	assert.Equal(t, false, rec["disponivel"])

	fixed, err = uc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}
