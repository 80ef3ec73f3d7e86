package legaldoc

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"google.golang.org/genai"
)

// ErrNotPDF is returned when the input file is not a PDF document.
var ErrNotPDF = errors.New("file is not a PDF")

const pdfMIMEType = "application/pdf"

// FileRef identifies an uploaded document in the Files API together with the
// local metadata recorded before upload.
type FileRef struct {
	URI         string    `json:"uri"`
	Name        string    `json:"name"`
	MIMEType    string    `json:"mime_type"`
	DisplayName string    `json:"display_name"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	Pages       int       `json:"pages"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// FileUploader sends a local file to the remote store and returns a reference
// to it. The interface exists so the pipeline can be tested offline.
type FileUploader interface {
	Upload(ctx context.Context, path, displayName string) (*FileRef, error)
}

// Uploader implements FileUploader against the Gemini Files API.
type Uploader struct {
	client   *genai.Client
	log      *slog.Logger
	attempts uint
	delay    time.Duration
}

// NewUploader builds an Uploader. A nil logger falls back to slog.Default().
func NewUploader(client *genai.Client, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{client: client, log: log, attempts: defaultMaxAttempts, delay: defaultRetryDelay}
}

// Upload verifies the local PDF, records its metadata, and uploads it.
// An empty displayName defaults to "Legal Document - <basename>".
func (u *Uploader) Upload(ctx context.Context, path, displayName string) (*FileRef, error) {
	if u.client == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	ref, err := inspectLocalFile(path, displayName)
	if err != nil {
		return nil, err
	}

	u.log.Debug("uploading file",
		"path", path,
		"display_name", ref.DisplayName,
		"pages", ref.Pages,
		"size_bytes", ref.SizeBytes)

	var file *genai.File
	err = retry.Do(
		func() error {
			var upErr error
			file, upErr = u.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
				MIMEType:    ref.MIMEType,
				DisplayName: ref.DisplayName,
			})
			if upErr != nil {
				u.log.Debug("upload attempt failed", "path", path, "error", upErr)
			}
			return upErr
		},
		retry.Context(ctx),
		retry.Attempts(u.attempts),
		retry.Delay(u.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}

	if file.State != "ACTIVE" {
		u.log.Warn("uploaded file is not in ACTIVE state", "state", file.State, "uri", file.URI)
	}

	ref.URI = file.URI
	ref.Name = file.Name
	ref.UploadedAt = time.Now()

	u.log.Info("file uploaded", "uri", ref.URI, "name", ref.Name, "display_name", ref.DisplayName)
	return ref, nil
}

// inspectLocalFile validates that path is a readable PDF and fills in the
// local half of a FileRef: MIME type, page count, size, and checksum.
func inspectLocalFile(path, displayName string) (*FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect MIME type of %s: %w", path, err)
	}
	if !mtype.Is(pdfMIMEType) {
		return nil, fmt.Errorf("%w: %s detected as %s", ErrNotPDF, path, mtype.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	pages, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("read page count of %s: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, fmt.Errorf("checksum %s: %w", path, err)
	}

	if displayName == "" {
		displayName = fmt.Sprintf("Legal Document - %s", filepath.Base(path))
	}

	return &FileRef{
		MIMEType:    pdfMIMEType,
		DisplayName: displayName,
		SizeBytes:   info.Size(),
		Checksum:    fmt.Sprintf("%x", hasher.Sum(nil)),
		Pages:       pages,
	}, nil
}
