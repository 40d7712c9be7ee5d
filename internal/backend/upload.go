package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MaxUploadSize mirrors the backend request size limit.
const MaxUploadSize = 16 << 20

var allowedExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
	"doc":  true,
}

// ValidateUpload checks the file name and size the way the backend does.
func ValidateUpload(filename string, size int64) error {
	name := strings.TrimSpace(filepath.Base(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return &ValidationError{Field: "file", Reason: "no file selected"}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !allowedExtensions[ext] {
		return &ValidationError{Field: "file", Reason: "invalid file type, only PDF and DOCX files are supported"}
	}

	if size > MaxUploadSize {
		return &ValidationError{Field: "file", Reason: fmt.Sprintf("file size %d exceeds the 16MB limit", size)}
	}

	return nil
}

// UploadFile validates and uploads the resume at path.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: err.Error()}
	}
	if info.IsDir() {
		return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("%s is a directory", path)}
	}

	if err := ValidateUpload(path, info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: err.Error()}
	}
	defer f.Close()

	return c.Upload(ctx, filepath.Base(path), info.Size(), f)
}

// Upload sends a resume as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, size int64, content io.Reader) (*UploadResult, error) {
	const op = "upload resume"

	if err := ValidateUpload(filename, size); err != nil {
		return nil, err
	}

	var result UploadResult
	if err := c.postFile(ctx, op, c.url("/api/upload"), "file", filepath.Base(filename), content, &result); err != nil {
		return nil, err
	}

	if !result.Success {
		msg := strings.TrimSpace(result.Error)
		if msg == "" {
			msg = "upload failed"
		}
		return nil, &TransportError{Op: op, Err: errors.New(msg)}
	}

	c.logger.Info("resume uploaded",
		zap.String("filename", filename),
		zap.String("candidate_id", string(result.CandidateID)),
	)

	return &result, nil
}
