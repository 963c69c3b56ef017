package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/credhex/internal/vault"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders n in binary units with at most two decimals,
// e.g. "0 Bytes", "1.5 KB", "2 MB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FormatDate renders t as "Jan 2, 2006" in local time.
func FormatDate(t time.Time) string {
	return t.Local().Format("Jan 2, 2006")
}

// Icon classes shown next to a certificate.
const (
	IconDocument     = "document"
	IconImage        = "image"
	IconTextDocument = "text document"
	IconFile         = "file"
)

// IconFor classifies a file name by its extension.
func IconFor(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return IconDocument
	case "jpg", "jpeg", "png":
		return IconImage
	case "doc", "docx":
		return IconTextDocument
	}
	return IconFile
}

var contentTypes = map[string]string{
	".pdf":  vault.ContentTypePDF,
	".jpg":  vault.ContentTypeJPEG,
	".jpeg": vault.ContentTypeJPEG,
	".png":  vault.ContentTypePNG,
	".doc":  vault.ContentTypeDOC,
	".docx": vault.ContentTypeDOCX,
}

// ContentTypeFor guesses the MIME type of name from its extension. Unknown
// extensions map to application/octet-stream, which the vault rejects.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FormatCard renders one certificate for the listing.
func FormatCard(c vault.Certificate) string {
	return fmt.Sprintf("[%s] %s\n    %s · %s · %s",
		IconFor(c.OriginalFileName), c.OriginalFileName,
		FormatSize(c.SizeBytes), FormatDate(c.CreatedAt), c.StoredName)
}
