package vault

import "github.com/dmitrijs2005/credhex/internal/common"

// Accepted MIME types.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxFileSizeBytes is the largest accepted upload (10 MiB).
const MaxFileSizeBytes = int64(10 * 1024 * 1024)

var allowedTypes = map[string]struct{}{
	ContentTypePDF:  {},
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeDOC:  {},
	ContentTypeDOCX: {},
}

// File is a candidate upload as handed over by the presentation layer.
type File struct {
	Name      string
	Type      string
	SizeBytes int64
	Data      []byte
}

// AllowedType reports whether contentType is on the allow-list. The match is exact.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

// Validate accepts or rejects f by MIME type and size. It returns
// common.ErrInvalidType, common.ErrTooLarge or common.ErrSizeMismatch,
// checked in that order. Data, when present, must be exactly SizeBytes long.
func Validate(f File) error {
	if !AllowedType(f.Type) {
		return common.ErrInvalidType
	}
	if f.SizeBytes > MaxFileSizeBytes || int64(len(f.Data)) > MaxFileSizeBytes {
		return common.ErrTooLarge
	}
	if f.Data != nil && int64(len(f.Data)) != f.SizeBytes {
		return common.ErrSizeMismatch
	}
	return nil
}
