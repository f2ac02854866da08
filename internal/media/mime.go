package media

import (
	"path/filepath"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",

	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",

	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mov": "video/quicktime",
	".mkv": "video/x-matroska",
}

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}
	audioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg"}
	videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}
)

// Extensions returns the allow-list for t. Audio analysis also accepts video
// containers; their audio track is extracted before upload.
func Extensions(t models.MediaType) []string {
	switch t {
	case models.MediaImage:
		return append([]string(nil), imageExtensions...)
	case models.MediaAudio:
		out := append([]string(nil), audioExtensions...)
		return append(out, videoExtensions...)
	case models.MediaVideo:
		return append([]string(nil), videoExtensions...)
	}
	return nil
}

// ExtensionSet returns Extensions(t) as a lookup set.
func ExtensionSet(t models.MediaType) map[string]bool {
	set := make(map[string]bool)
	for _, ext := range Extensions(t) {
		set[ext] = true
	}
	return set
}

// Ext returns the lowercased extension of path including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// MIMEType maps a file extension to its MIME type.
func MIMEType(path string) (string, bool) {
	m, ok := mimeTypes[Ext(path)]
	return m, ok
}

// IsVideoContainer reports whether path has a video extension.
func IsVideoContainer(path string) bool {
	ext := Ext(path)
	for _, v := range videoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// KindOfMIME returns the media type a MIME string belongs to.
func KindOfMIME(mime string) (models.MediaType, bool) {
	major, _, _ := strings.Cut(strings.ToLower(mime), "/")
	switch major {
	case "image":
		return models.MediaImage, true
	case "audio":
		return models.MediaAudio, true
	case "video":
		return models.MediaVideo, true
	}
	return "", false
}
