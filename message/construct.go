package message

import (
	"mime"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

const defaultAttachmentType = "application/octet-stream"

// Construct assembles a message from discretely parsed parts.
func Construct(header core.Header, text string, html string, attachments []core.Attachment) core.Message {
	return core.Message{
		Header:      header.Clone(),
		Text:        text,
		HTML:        html,
		Attachments: append([]core.Attachment(nil), attachments...),
	}
}

// AttachmentFromUpload turns an uploaded file into an attachment. A non-empty
// contentID marks the attachment as inline.
func AttachmentFromUpload(file core.UploadedFile, contentID string) core.Attachment {
	contentType := defaultAttachmentType
	if raw := strings.TrimSpace(file.ContentType); raw != "" {
		if mediaType, _, err := mime.ParseMediaType(raw); err == nil {
			contentType = strings.ToLower(mediaType)
		}
	}
	contentID = strings.TrimSpace(contentID)
	return core.Attachment{
		Content:     append([]byte(nil), file.Content...),
		Filename:    file.Filename,
		ContentType: contentType,
		ContentID:   contentID,
		Inline:      contentID != "",
	}
}
