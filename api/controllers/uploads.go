package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/uploads"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

// UploadLimits bounds multipart requests before they are proxied.
type UploadLimits struct {
	MaxBytes int64
	MaxFiles int
}

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

func parseMultipart(w http.ResponseWriter, r *http.Request, limits UploadLimits) error {
	if limits.MaxBytes > 0 {
		// allow the sum of files plus form overhead
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes*int64(max(limits.MaxFiles, 1))+(1<<20))
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "Upload is too large")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid upload")
	}
	return nil
}

// formFiles opens every file under field. The returned closer releases them.
func formFiles(r *http.Request, field string, limits UploadLimits) ([]backend.File, func(), error) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}
	if limits.MaxFiles > 0 && len(headers) > limits.MaxFiles {
		return nil, func() {}, pkgerrors.New(pkgerrors.CodeValidation, "Too many images selected").
			WithDetails(map[string]any{"maxFiles": limits.MaxFiles})
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]backend.File, 0, len(headers))
	for _, h := range headers {
		if limits.MaxBytes > 0 && h.Size > limits.MaxBytes {
			closeAll()
			return nil, func() {}, pkgerrors.New(pkgerrors.CodeValidation, h.Filename+" is too large")
		}
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid upload")
		}
		opened = append(opened, f)
		files = append(files, backend.File{Name: h.Filename, ContentType: h.Header.Get("Content-Type"), Content: f})
	}
	return files, closeAll, nil
}

// UploadProfileImage proxies one image under the "image" field.
func UploadProfileImage(svc uploads.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		if err := parseMultipart(w, r, UploadLimits{MaxBytes: limits.MaxBytes, MaxFiles: 1}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Please choose an image"))
			return
		}
		defer file.Close()

		result, err := svc.ProfileImage(r.Context(), sess, uploads.Image{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusCreated, result, result.Notice)
	}
}
