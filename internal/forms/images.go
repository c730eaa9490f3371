package forms

import (
	"strings"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// ImageSet is a property's gallery. When it is non-empty exactly one image
// is primary.
type ImageSet struct {
	images []backend.Image
}

// NewImageSet adopts existing images, keeping only the first primary flag
// and promoting the first image when none is marked.
func NewImageSet(images []backend.Image) *ImageSet {
	s := &ImageSet{}
	seen := false
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		img.IsPrimary = img.IsPrimary && !seen
		seen = seen || img.IsPrimary
		s.images = append(s.images, img)
	}
	if !seen && len(s.images) > 0 {
		s.images[0].IsPrimary = true
	}
	return s
}

// Add appends an image. The first image added becomes primary.
func (s *ImageSet) Add(url, caption string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	s.images = append(s.images, backend.Image{
		URL:       url,
		Caption:   strings.TrimSpace(caption),
		IsPrimary: len(s.images) == 0,
	})
}

func (s *ImageSet) SetPrimary(i int) error {
	if i < 0 || i >= len(s.images) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Image not found")
	}
	for j := range s.images {
		s.images[j].IsPrimary = j == i
	}
	return nil
}

// Remove deletes an image. Removing the primary promotes the first
// remaining image.
func (s *ImageSet) Remove(i int) error {
	if i < 0 || i >= len(s.images) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Image not found")
	}
	wasPrimary := s.images[i].IsPrimary
	s.images = append(s.images[:i], s.images[i+1:]...)
	if wasPrimary && len(s.images) > 0 {
		s.images[0].IsPrimary = true
	}
	return nil
}

// Images returns a copy of the gallery.
func (s *ImageSet) Images() []backend.Image {
	if s == nil {
		return nil
	}
	return append([]backend.Image(nil), s.images...)
}

func (s *ImageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.images)
}

// Primary returns the cover image.
func (s *ImageSet) Primary() (backend.Image, bool) {
	for _, img := range s.images {
		if img.IsPrimary {
			return img, true
		}
	}
	return backend.Image{}, false
}
