package message

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

const defaultMediaType = "text/plain"

// ParseRaw reconstructs a message from a complete RFC 5322 / MIME document.
// Header order and duplicates are preserved. Transfer encodings are decoded
// and text bodies are converted to UTF-8.
func ParseRaw(raw string) (core.Message, error) {
	headerBlock, body := splitHeaderBlock(raw)
	header := parseHeaderBlock(headerBlock)

	msg := core.Message{Header: header}
	w := walker{msg: &msg}
	if err := w.entity(mimeHeader(header), strings.NewReader(body), 0); err != nil {
		return core.Message{}, err
	}
	return msg, nil
}

// splitHeaderBlock returns the header block and body, split at the first
// empty line. Either CRLF or bare LF line endings are accepted.
func splitHeaderBlock(raw string) (string, string) {
	crlf := strings.Index(raw, "\r\n\r\n")
	lf := strings.Index(raw, "\n\n")
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return raw[:crlf], raw[crlf+4:]
	case lf >= 0:
		return raw[:lf], raw[lf+2:]
	default:
		return raw, ""
	}
}

func parseHeaderBlock(block string) core.Header {
	var header core.Header
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(header) > 0 {
				last := &header[len(header)-1]
				last.Value = strings.TrimSpace(last.Value + line)
			}
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimRight(name, " \t")
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			// mbox "From " separators and other stray lines carry no field
			continue
		}
		header = append(header, core.HeaderField{
			Name:  name,
			Value: strings.TrimSpace(value),
		})
	}
	return header
}

func mimeHeader(header core.Header) textproto.MIMEHeader {
	out := textproto.MIMEHeader{}
	for _, field := range header {
		out.Add(field.Name, field.Value)
	}
	return out
}

// maxDepth bounds multipart nesting.
const maxDepth = 32

type walker struct {
	msg *core.Message
}

func (w walker) entity(header textproto.MIMEHeader, body io.Reader, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("message: multipart nesting exceeds %d levels", maxDepth)
	}
	mediaType, params := contentType(header)
	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("message: %s entity missing boundary", mediaType)
		}
		return w.multipart(body, boundary, depth)
	}

	content, err := readContent(header, body)
	if err != nil {
		return err
	}
	w.leaf(header, mediaType, params, content)
	return nil
}

func (w walker) multipart(body io.Reader, boundary string, depth int) error {
	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message: read multipart part: %w", err)
		}
		if err := w.entity(part.Header, part, depth+1); err != nil {
			return err
		}
	}
}

func (w walker) leaf(header textproto.MIMEHeader, mediaType string, params map[string]string, content []byte) {
	disposition, dispositionParams := contentDisposition(header)
	filename := dispositionParams["filename"]
	if filename == "" {
		filename = params["name"]
	}
	contentID := strings.TrimSpace(header.Get("Content-Id"))

	if disposition != "attachment" && filename == "" && contentID == "" {
		switch mediaType {
		case "text/plain":
			if w.msg.Text == "" {
				w.msg.Text = decodeCharset(content, params["charset"])
			}
			return
		case "text/html":
			if w.msg.HTML == "" {
				w.msg.HTML = decodeCharset(content, params["charset"])
			}
			return
		}
	}

	w.msg.Attachments = append(w.msg.Attachments, core.Attachment{
		Content:     content,
		Filename:    filename,
		ContentType: mediaType,
		ContentID:   contentID,
		Inline:      disposition == "inline" || (disposition == "" && contentID != ""),
	})
}

func contentType(header textproto.MIMEHeader) (string, map[string]string) {
	raw := strings.TrimSpace(header.Get("Content-Type"))
	if raw == "" {
		return defaultMediaType, map[string]string{}
	}
	mediaType, params, err := mime.ParseMediaType(raw)
	if err != nil {
		return defaultMediaType, map[string]string{}
	}
	return strings.ToLower(mediaType), params
}

func contentDisposition(header textproto.MIMEHeader) (string, map[string]string) {
	raw := strings.TrimSpace(header.Get("Content-Disposition"))
	if raw == "" {
		return "", map[string]string{}
	}
	disposition, params, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(raw, ";", 2)[0])), map[string]string{}
	}
	return strings.ToLower(disposition), params
}

// readContent reads an entity body and reverses its transfer encoding.
// multipart.Reader already removes quoted-printable from parts, so the
// quoted-printable branch only runs for single-part documents.
func readContent(header textproto.MIMEHeader, body io.Reader) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding")))
	switch encoding {
	case "base64":
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("message: read entity: %w", err)
		}
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '\r', '\n', ' ', '\t':
				return -1
			}
			return r
		}, string(raw))
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
			if err != nil {
				return nil, fmt.Errorf("message: decode base64 entity: %w", err)
			}
		}
		return decoded, nil
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("message: decode quoted-printable entity: %w", err)
		}
		return decoded, nil
	default:
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("message: read entity: %w", err)
		}
		return raw, nil
	}
}
