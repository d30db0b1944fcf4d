package client

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/okhotnikov/surveysync/internal/filex"
)

// inferUploadMeta picks the multipart filename and MIME type for a capture.
// The extension decides when it is recognized; otherwise the file content is
// sniffed, and the per-kind default applies as a last resort.
func inferUploadMeta(localURI string, kind models.MediaKind, data []byte) (filename, contentType string) {
	switch ext := filex.Ext(localURI); kind {
	case models.MediaKindImage:
		switch ext {
		case ".png":
			return "photo.png", "image/png"
		case ".webp":
			return "photo.webp", "image/webp"
		case ".heic", ".heif":
			return "photo.heic", "image/heic"
		case ".jpg", ".jpeg":
			return "photo.jpg", "image/jpeg"
		}
		return sniff(data, "photo", "photo.jpg", "image/jpeg")
	case models.MediaKindAudio:
		switch ext {
		case ".mp3":
			return "rec.mp3", "audio/mpeg"
		case ".wav":
			return "rec.wav", "audio/wav"
		case ".caf":
			return "rec.caf", "audio/x-caf"
		case ".m4a":
			return "rec.m4a", "audio/m4a"
		}
		return sniff(data, "rec", "rec.m4a", "audio/m4a")
	case models.MediaKindVideo:
		switch ext {
		case ".mov":
			return "video.mov", "video/quicktime"
		case ".m4v":
			return "video.m4v", "video/x-m4v"
		case ".mp4":
			return "video.mp4", "video/mp4"
		}
		return sniff(data, "video", "video.mp4", "video/mp4")
	}
	return sniff(data, "file", "file.bin", "application/octet-stream")
}

// sniff detects the MIME type from content, falling back to the provided
// defaults when detection yields nothing useful.
func sniff(data []byte, base, defaultName, defaultType string) (string, string) {
	m := mimetype.Detect(data)
	if m.Is("application/octet-stream") || m.Extension() == "" {
		return defaultName, defaultType
	}
	return base + m.Extension(), m.String()
}
