package constants

import "strings"

// UploadContentTypes are the sniffed MIME types the upload form accepts,
// mapped to the extension the temp file gets.
var UploadContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHEICExt reports whether ext names a HEIC/HEIF container.
func IsHEICExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "heic", "heif":
		return true
	}
	return false
}
