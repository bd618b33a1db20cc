package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 10 << 20

// AllowedTypes are the sniffed content types accepted for project images.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var (
	ErrEmpty           = errors.New("empty file")
	ErrTooLarge        = fmt.Errorf("file larger than %d MB", MaxImageSize>>20)
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUploadFailed    = errors.New("upload failed")
)

// ObjectStore is the part of storage_go.Client used here.
type ObjectStore interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// Image describes a stored upload.
type Image struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Uploader validates images and stores them in a public bucket.
type Uploader struct {
	store  ObjectStore
	bucket string
	now    func() time.Time

	// storage_go keeps per-upload headers on the shared client
	mu sync.Mutex
}

func NewUploader(store ObjectStore, bucket string) *Uploader {
	return &Uploader{store: store, bucket: bucket, now: time.Now}
}

// Upload reads at most MaxImageSize bytes from r, checks the sniffed type and
// stores the file under ownerID's folder. The client-declared type is ignored.
func (u *Uploader) Upload(ctx context.Context, ownerID string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !allowed(mtype) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	objectPath := path.Join(folder(ownerID), now.Format("2006/01"), uuid.New().String()+mtype.Extension())

	upsert := false
	u.mu.Lock()
	_, err = u.store.UploadFile(u.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	u.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &Image{
		URL:         u.store.GetPublicUrl(u.bucket, objectPath).SignedURL,
		Path:        objectPath,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}

func allowed(mtype *mimetype.MIME) bool {
	for _, t := range AllowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

func folder(ownerID string) string {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || strings.ContainsAny(ownerID, "/\\.") {
		return "anonymous"
	}
	return ownerID
}
