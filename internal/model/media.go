package model

import "errors"

// UploadResult is the stored location of an uploaded avatar.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Avatar constraints. Uploads are normalized to a square JPEG.
const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	ContentTypeJPEG    = "image/jpeg"
	AvatarCacheControl = "public, max-age=31536000"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether the content type is an accepted
// avatar upload format.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)
