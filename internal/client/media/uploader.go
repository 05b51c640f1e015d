// Package media uploads local images to object storage and records them in
// the files collection.
package media

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/netx"
	"github.com/google/uuid"
)

// KeyPrefix is the storage folder every upload lands in.
const KeyPrefix = "Stuff/"

type Storage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type Recorder interface {
	AddDocument(ctx context.Context, collection string, v any) (string, error)
}

// ProgressFunc receives the upload progress as a whole percentage 0..100.
type ProgressFunc func(percent int)

var (
	readFile = os.ReadFile
	upload   = netx.UploadToPresignedURL
	now      = time.Now
	newID    = uuid.NewString
)

type Uploader struct {
	storage  Storage
	recorder Recorder
	logger   logging.Logger
}

func NewUploader(s Storage, r Recorder, l logging.Logger) *Uploader {
	return &Uploader{storage: s, recorder: r, logger: l.With("module", "media")}
}

func objectKey(t time.Time, ext string) string {
	return fmt.Sprintf("%s%d-%s%s", KeyPrefix, t.UnixMilli(), newID(), strings.ToLower(ext))
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func fileType(ct string) string {
	if strings.HasPrefix(ct, "image/") {
		return "image"
	}
	return "file"
}

// Upload sends the file at path to object storage and returns its download
// URL. The files collection entry is best effort: a failure there is logged
// and the URL is still returned.
func (u *Uploader) Upload(ctx context.Context, path string, onProgress ProgressFunc) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty: %w", path, common.ErrorValidation)
	}

	ct := contentType(path, data)
	key := objectKey(now(), filepath.Ext(path))

	putURL, err := u.storage.PresignUpload(ctx, key, ct)
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}

	var progress netx.ProgressFunc
	if onProgress != nil {
		last := -1
		progress = func(sent, total int64) {
			p := int(sent * 100 / total)
			if p != last {
				last = p
				onProgress(p)
			}
		}
	}
	if err := upload(ctx, putURL, data, ct, progress); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	url, err := u.storage.DownloadURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}
	u.logger.Debug(ctx, "file available", "key", key, "url", url)

	rec := models.FileRecord{FileType: fileType(ct), URL: url, CreatedAt: now().UTC()}
	if id, err := u.recorder.AddDocument(ctx, common.FilesCollection, rec); err != nil {
		u.logger.Error(ctx, "save file record", "key", key, "error", err)
	} else {
		u.logger.Debug(ctx, "file record saved", "id", id)
	}

	return url, nil
}
