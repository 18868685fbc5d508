// Package bind decodes HTTP request bodies into typed DTOs and validates them.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fusionfit/storefront/config"
	"github.com/fusionfit/storefront/pkg/validate"
)

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20 // 4 MB
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES to prevent memory exhaustion.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

// ─── Multipart ────────────────────────────────────────────────────────────────

// File is an uploaded file read fully into memory, the way the storefront's
// gallery uploads arrive (small images, ≤5 per request).
type File struct {
	Name    string
	Content []byte
}

// maxUploadBytes caps a single uploaded file (default 8 MB).
func maxUploadBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_UPLOAD_BYTES", "8388608"), 10, 64)
	if err != nil || n <= 0 {
		return 8 << 20
	}
	return n
}

// Multipart parses a multipart/form-data body. Call before reading form
// values or files. Memory beyond the cap spills to temp files.
func Multipart(r *http.Request) error {
	if err := r.ParseMultipartForm(maxBodyBytes()); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	return nil
}

// FormFiles reads every file uploaded under field into memory.
// Multipart must have been called first.
func FormFiles(r *http.Request, field string) ([]File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[field]
	files := make([]File, 0, len(headers))
	limit := maxUploadBytes()

	for _, hdr := range headers {
		if hdr.Size > limit {
			return nil, fmt.Errorf("file %q too large (max %d bytes)", hdr.Filename, limit)
		}

		f, err := hdr.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", hdr.Filename, err)
		}

		content, err := io.ReadAll(io.LimitReader(f, limit))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", hdr.Filename, err)
		}

		files = append(files, File{Name: hdr.Filename, Content: content})
	}

	return files, nil
}
