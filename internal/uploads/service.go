// Package uploads proxies image uploads to the CRM.
package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

const uploadedNotice = "Image uploaded successfully"

// Image is one file taken from a multipart request.
type Image struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Uploaded is the stored image location.
type Uploaded struct {
	URL    string `json:"url"`
	Notice string `json:"-"`
}

type Service interface {
	ProfileImage(ctx context.Context, sess *session.Record, img Image) (*Uploaded, error)
	// Check applies the type and size rules without uploading.
	Check(img Image) error
}

type uploadBackend interface {
	UploadProfileImage(ctx context.Context, token string, file backend.File) (string, error)
}

type service struct {
	backend  uploadBackend
	maxBytes int64
}

func NewService(b uploadBackend, maxBytes int64) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("upload size limit must be positive")
	}
	return &service{backend: b, maxBytes: maxBytes}, nil
}

func (s *service) Check(img Image) error {
	if img.Content == nil || img.Size == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please choose an image")
	}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return pkgerrors.New(pkgerrors.CodeValidation, "Only image files can be uploaded")
	}
	if img.Size > s.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Image must be smaller than %d MB", s.maxBytes>>20)).
			WithDetails(map[string]any{"maxBytes": s.maxBytes, "size": img.Size})
	}
	return nil
}

func (s *service) ProfileImage(ctx context.Context, sess *session.Record, img Image) (*Uploaded, error) {
	if sess == nil || sess.BackendToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.Check(img); err != nil {
		return nil, err
	}
	location, err := s.backend.UploadProfileImage(ctx, sess.BackendToken, backend.File{
		Name:        img.Name,
		ContentType: img.ContentType,
		Content:     io.LimitReader(img.Content, s.maxBytes),
	})
	if err != nil {
		return nil, err
	}
	return &Uploaded{URL: location, Notice: uploadedNotice}, nil
}
