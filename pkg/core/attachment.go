package core

import "strings"

// MediaCategory selects which gateway endpoint family an attachment is
// sent through: image/video/audio use the media endpoint, everything
// else goes through the document endpoint.
type MediaCategory string

const (
	MediaImage    MediaCategory = "image"
	MediaVideo    MediaCategory = "video"
	MediaAudio    MediaCategory = "audio"
	MediaDocument MediaCategory = "document"
)

// Attachment represents a file handed to the outbound pipeline.
type Attachment struct {
	FileName string
	MimeType string
	Category MediaCategory
	Data     []byte
}

// CategoryForMime maps a MIME type to the endpoint family it belongs to.
func CategoryForMime(mimeType string) MediaCategory {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaAudio
	default:
		return MediaDocument
	}
}
