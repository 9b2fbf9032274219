package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/internal/storetest"
)

func run(t *testing.T, store *storetest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"--store-url", storetest.BaseURL}, args...)
	err := Execute(context.Background(), full, WithOutput(&out), WithDialer(store.Dial))
	return out.String(), err
}

func newStore(t *testing.T) *storetest.Server {
	t.Helper()
	store := storetest.New()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "rentalctl", cmd.Use)
	assert.Equal(t, "Manage properties, rental contracts and installments", cmd.Short)

	flags := cmd.PersistentFlags()
	assert.NotNil(t, flags.Lookup("env-file"))
	assert.NotNil(t, flags.Lookup("store-url"))
	assert.NotNil(t, flags.Lookup("output"))
}

func TestPropertyCmd(t *testing.T) {
	cmd := PropertyCmd(&App{})
	assert.Equal(t, "property", cmd.Use)
	assert.Equal(t, "Manage properties", cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "available", "save", "delete", "summary", "reconcile"}, names)

	save, _, err := cmd.Find([]string{"save"})
	require.NoError(t, err)
	for _, f := range []string{"id", "title", "description", "available", "photo", "remove-photo"} {
		assert.NotNil(t, save.Flags().Lookup(f), f)
	}
}

func TestContractCmd(t *testing.T) {
	cmd := ContractCmd(&App{})
	assert.Equal(t, "contract", cmd.Use)
	assert.Equal(t, "Manage rental contracts", cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "save", "activate", "terminate", "expire", "delete"}, names)
}

func TestInstallmentCmd(t *testing.T) {
	cmd := InstallmentCmd(&App{})
	assert.Equal(t, "installment", cmd.Use)
	assert.Equal(t, "Track installments and payments", cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "due", "save", "receive", "delete", "summary"}, names)
}

func TestPhotoEncodeCmd(t *testing.T) {
	cmd := PhotoCmd(&App{})
	assert.Equal(t, "photo", cmd.Use)

	dir := t.TempDir()
	path := filepath.Join(dir, "front.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 150))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	var out bytes.Buffer
	err := Execute(context.Background(), []string{"photo", "encode", "--max-width", "100", path}, WithOutput(&out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "front.png 100x50 image/jpeg")

	out.Reset()
	err = Execute(context.Background(), []string{"photo", "encode", "--data-uri", path}, WithOutput(&out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "data:image/jpeg;base64,")
}

func TestPhotoEncodeRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	err := Execute(context.Background(), []string{"photo", "encode", path}, WithOutput(&bytes.Buffer{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncodeFailed)
	assert.True(t, domain.IsKind(err, domain.KindCapture))
}

func TestOfflineCommandValidatesOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "front.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	var out bytes.Buffer
	err := Execute(context.Background(), []string{"-o", "xml", "photo", "encode", path}, WithOutput(&out))
	assert.ErrorContains(t, err, `unknown output format "xml"`)
	assert.Empty(t, out.String())
}

func TestPropertySaveAndList(t *testing.T) {
	store := newStore(t)

	_, err := run(t, store, "property", "save", "--title", "Casa Azul", "--description", "2 quartos")
	require.NoError(t, err)

	out, err := run(t, store, "-o", "json", "property", "list")
	require.NoError(t, err)
	var items []domain.Property
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Casa Azul", items[0].Title)
	assert.True(t, items[0].Available)

	out, err = run(t, store, "property", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Casa Azul")
}

func TestPropertySaveBlankTitleNeverReachesStore(t *testing.T) {
	store := newStore(t)

	_, err := run(t, store, "property", "save", "--title", "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Empty(t, store.Requests())
}

func TestContractLifecycleThroughCLI(t *testing.T) {
	store := newStore(t)
	pid := store.Seed(storetest.Properties, storetest.Record{"titulo": "Casa", "disponivel": true})

	_, err := run(t, store, "contract", "save",
		"--property", itoa(int(pid)), "--tenant", "Ana", "--start", "2025-01-31",
		"--billing-day", "31", "--months", "3", "--amount", "1500")
	require.NoError(t, err)
	require.Equal(t, 1, store.Count(storetest.Contracts))

	contracts, err := run(t, store, "-o", "json", "contract", "list")
	require.NoError(t, err)
	var list []domain.Contract
	require.NoError(t, json.Unmarshal([]byte(contracts), &list))
	require.Len(t, list, 1)
	cid := list[0].ID.String()

	out, err := run(t, store, "contract", "activate", cid)
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-28")
	assert.Equal(t, 3, store.Count(storetest.Installments))

	_, err = run(t, store, "contract", "delete", cid)
	assert.ErrorIs(t, err, domain.ErrContractActive)

	_, err = run(t, store, "contract", "terminate", cid)
	require.NoError(t, err)
	_, err = run(t, store, "contract", "delete", cid)
	require.NoError(t, err)
	assert.Zero(t, store.Count(storetest.Installments))
}

func TestInstallmentReceiveAndSummary(t *testing.T) {
	store := newStore(t)
	id := store.Seed(storetest.Installments, storetest.Record{
		"imovelId": 1, "dataVencimento": "2024-01-10", "valor": "300.00", "situacao": "ABERTA",
	})

	_, err := run(t, store, "installment", "receive", itoa(int(id)))
	require.NoError(t, err)
	_, err = run(t, store, "installment", "receive", itoa(int(id)))
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	out, err := run(t, store, "installment", "summary", "--today", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, "PAID")
	assert.Contains(t, out, "300.00")
}

func TestMissingStoreURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_BASE_URL", "")
	err := Execute(context.Background(), []string{"property", "list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BASE_URL")
}

// chdir stands in for testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
