package nethttp

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mailhooks/core"
)

const (
	// DefaultMaxBodyBytes fits Mailgun's 25MB message limit plus form overhead.
	DefaultMaxBodyBytes int64 = 32 << 20
	// DefaultMaxMemory is the multipart size kept in memory before spilling
	// uploads to temporary files.
	DefaultMaxMemory int64 = 8 << 20
)

type Decoder struct {
	MaxBodyBytes int64
	MaxMemory    int64
}

// NewInboundRequest decodes r with the default limits.
func NewInboundRequest(r *http.Request, providerID string, surface string) (core.InboundRequest, error) {
	return Decoder{}.Decode(r, providerID, surface)
}

func (d Decoder) Decode(r *http.Request, providerID string, surface string) (core.InboundRequest, error) {
	if r == nil {
		return core.InboundRequest{}, core.Internal("nethttp: request is nil", nil)
	}
	maxBody := d.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	maxMemory := d.MaxMemory
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	body, err := readBody(r, maxBody)
	if err != nil {
		return core.InboundRequest{}, err
	}
	req := core.InboundRequest{
		ProviderID: providerID,
		Surface:    surface,
		Headers:    flattenHeaders(r.Header),
		Form:       url.Values{},
		Files:      map[string][]core.UploadedFile{},
		Body:       body,
		Metadata:   map[string]any{},
	}
	if requestID := strings.TrimSpace(r.Header.Get("X-Request-Id")); requestID != "" {
		req.Metadata["request_id"] = requestID
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch strings.ToLower(mediaType) {
	case "multipart/form-data":
		form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxMemory)
		if err != nil {
			return core.InboundRequest{}, core.WrapBadPayload(err, "nethttp: parse multipart form", nil)
		}
		defer func() { _ = form.RemoveAll() }()
		for key, values := range form.Value {
			req.Form[key] = append([]string(nil), values...)
		}
		for field, headers := range form.File {
			files, err := readUploads(headers)
			if err != nil {
				return core.InboundRequest{}, err
			}
			req.Files[field] = files
		}
	case "application/x-www-form-urlencoded", "":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return core.InboundRequest{}, core.WrapBadPayload(err, "nethttp: parse urlencoded form", nil)
		}
		req.Form = values
	default:
		return core.InboundRequest{}, core.BadPayload("nethttp: unsupported content type", map[string]any{
			"content_type": mediaType,
		})
	}
	return req, nil
}

func readBody(r *http.Request, maxBody int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer func() { _ = r.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, core.WrapBadPayload(err, "nethttp: read request body", nil)
	}
	if int64(len(body)) > maxBody {
		return nil, core.NewError(
			"nethttp: request body too large",
			goerrors.CategoryBadInput,
			http.StatusRequestEntityTooLarge,
			core.ErrorBadPayload,
			map[string]any{"max_body_bytes": maxBody},
		)
	}
	return body, nil
}

func readUploads(headers []*multipart.FileHeader) ([]core.UploadedFile, error) {
	files := make([]core.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, core.WrapBadPayload(err, "nethttp: open uploaded file", map[string]any{"filename": header.Filename})
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, core.WrapBadPayload(err, "nethttp: read uploaded file", map[string]any{"filename": header.Filename})
		}
		contentType := header.Header.Get("Content-Type")
		_, params, _ := mime.ParseMediaType(contentType)
		files = append(files, core.UploadedFile{
			Filename:    header.Filename,
			ContentType: contentType,
			Charset:     params["charset"],
			Content:     content,
		})
	}
	return files, nil
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
