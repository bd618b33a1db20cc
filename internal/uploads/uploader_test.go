package uploads

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01")
)

type storedObject struct {
	path        string
	contentType string
	size        int
}

// fakeStorage mimics the object endpoint of Supabase Storage.
type fakeStorage struct {
	mu      sync.Mutex
	objects []storedObject
	fail    bool
}

func (f *fakeStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/storage/v1/object/") {
		http.NotFound(w, r)
		return
	}
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":"500","error":"internal","message":"bucket unavailable"}`))
		return
	}
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.objects = append(f.objects, storedObject{
		path:        strings.TrimPrefix(r.URL.Path, "/storage/v1/object/"),
		contentType: r.Header.Get("Content-Type"),
		size:        len(body),
	})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"Key":"` + strings.TrimPrefix(r.URL.Path, "/storage/v1/object/") + `"}`))
}

func setupUploader(t *testing.T) (*Uploader, *fakeStorage, string) {
	fake := &fakeStorage{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := storage_go.NewClient(srv.URL+"/storage/v1", "service-key", nil)
	u := NewUploader(client, "project-images")
	u.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return u, fake, srv.URL
}

func TestUploader_StoresImages(t *testing.T) {
	u, fake, base := setupUploader(t)

	img, err := u.Upload(context.Background(), "u-1", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, len(pngHeader), img.Size)
	assert.True(t, strings.HasPrefix(img.Path, "u-1/2024/05/"))
	assert.True(t, strings.HasSuffix(img.Path, ".png"))
	assert.Equal(t, base+"/storage/v1/object/public/project-images/"+img.Path, img.URL)

	require.Len(t, fake.objects, 1)
	assert.Equal(t, "project-images/"+img.Path, fake.objects[0].path)
	assert.Equal(t, "image/png", fake.objects[0].contentType)
	assert.Equal(t, len(pngHeader), fake.objects[0].size)
}

func TestUploader_SniffsType(t *testing.T) {
	u, _, _ := setupUploader(t)

	for name, data := range map[string][]byte{"gif": gifHeader, "jpeg": jpegHeader} {
		img, err := u.Upload(context.Background(), "u-1", bytes.NewReader(data))
		require.NoError(t, err, name)
		assert.Equal(t, "image/"+name, img.ContentType)
	}

	_, err := u.Upload(context.Background(), "u-1", strings.NewReader("<html><body>not an image</body></html>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploader_Limits(t *testing.T) {
	u, fake, _ := setupUploader(t)

	_, err := u.Upload(context.Background(), "u-1", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmpty)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxImageSize)...)
	_, err = u.Upload(context.Background(), "u-1", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	exact := append(append([]byte{}, pngHeader...), make([]byte, MaxImageSize-len(pngHeader))...)
	_, err = u.Upload(context.Background(), "u-1", bytes.NewReader(exact))
	assert.NoError(t, err)

	assert.Len(t, fake.objects, 1)
}

func TestUploader_StorageFailure(t *testing.T) {
	u, fake, _ := setupUploader(t)
	fake.fail = true

	_, err := u.Upload(context.Background(), "u-1", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestFolder(t *testing.T) {
	assert.Equal(t, "u-1", folder("u-1"))
	assert.Equal(t, "anonymous", folder(""))
	assert.Equal(t, "anonymous", folder("../etc"))
}
