package message

import (
	"testing"

	"github.com/goliatone/go-mailhooks/core"
)

func TestConstruct_CopiesParts(t *testing.T) {
	header := core.Header{{Name: "Subject", Value: "Hi"}}
	attachments := []core.Attachment{{Filename: "a.txt"}}
	msg := Construct(header, "text", "<p>html</p>", attachments)

	header[0].Value = "changed"
	attachments[0].Filename = "changed.txt"
	if msg.Subject() != "Hi" {
		t.Fatalf("expected header copy, got %q", msg.Subject())
	}
	if msg.Attachments[0].Filename != "a.txt" {
		t.Fatalf("expected attachment copy, got %q", msg.Attachments[0].Filename)
	}
	if msg.Text != "text" || msg.HTML != "<p>html</p>" {
		t.Fatalf("unexpected bodies %#v", msg)
	}
}

func TestAttachmentFromUpload(t *testing.T) {
	cases := []struct {
		name        string
		file        core.UploadedFile
		contentID   string
		contentType string
		inline      bool
	}{
		{name: "regular", file: core.UploadedFile{Filename: "r.pdf", ContentType: "Application/PDF"}, contentType: "application/pdf"},
		{name: "inline", file: core.UploadedFile{Filename: "l.png", ContentType: "image/png; name=l.png"}, contentID: " <logo> ", contentType: "image/png", inline: true},
		{name: "missing type", file: core.UploadedFile{Filename: "x.bin"}, contentType: "application/octet-stream"},
		{name: "malformed type", file: core.UploadedFile{Filename: "y.bin", ContentType: ";;"}, contentType: "application/octet-stream"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attachment := AttachmentFromUpload(tc.file, tc.contentID)
			if attachment.ContentType != tc.contentType {
				t.Fatalf("expected content type %q, got %q", tc.contentType, attachment.ContentType)
			}
			if attachment.Inline != tc.inline {
				t.Fatalf("expected inline=%v, got %v", tc.inline, attachment.Inline)
			}
			if attachment.Filename != tc.file.Filename {
				t.Fatalf("expected filename %q, got %q", tc.file.Filename, attachment.Filename)
			}
		})
	}
	if got := AttachmentFromUpload(core.UploadedFile{}, " <logo> ").ContentID; got != "<logo>" {
		t.Fatalf("expected trimmed content id, got %q", got)
	}
}

func TestDecodeCharset(t *testing.T) {
	cases := []struct {
		charset  string
		content  []byte
		expected string
	}{
		{charset: "", content: []byte("plain"), expected: "plain"},
		{charset: "windows-1252", content: []byte{0x93, 'q', 0x94}, expected: "“q”"},
		{charset: "\"iso-8859-1\"", content: []byte{'c', 'a', 'f', 0xe9}, expected: "café"},
		{charset: "x-unknown", content: []byte("raw"), expected: "raw"},
	}
	for _, tc := range cases {
		if got := decodeCharset(tc.content, tc.charset); got != tc.expected {
			t.Fatalf("decodeCharset(%q) = %q, expected %q", tc.charset, got, tc.expected)
		}
	}
}
