package mailgun

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-mailhooks/core"
)

var rawInboundMessage = strings.Join([]string{
	`Received: by luna.mailgun.net with HTTP; Mon, 10 Feb 2014 00:26:22 +0000`,
	`From: "Bob Sender" <bob@example.com>`,
	`To: alice@example.com`,
	`Subject: Quarterly report`,
	`Message-Id: <20140210002622.1234@example.com>`,
	`Mime-Version: 1.0`,
	`Content-Type: multipart/mixed; boundary="outer"`,
	``,
	`--outer`,
	`Content-Type: multipart/alternative; boundary="inner"`,
	``,
	`--inner`,
	`Content-Type: text/plain; charset="utf-8"`,
	``,
	`Report attached.`,
	`--inner`,
	`Content-Type: text/html; charset="utf-8"`,
	`Content-Transfer-Encoding: quoted-printable`,
	``,
	`<p>Report attached.<img src=3D"cid:logo@example.com"></p>`,
	`--inner--`,
	`--outer`,
	`Content-Type: image/png; name="logo.png"`,
	`Content-Disposition: inline; filename="logo.png"`,
	`Content-Id: <logo@example.com>`,
	`Content-Transfer-Encoding: base64`,
	``,
	`iVBORw0KGgo=`,
	`--outer`,
	`Content-Type: application/pdf`,
	`Content-Disposition: attachment; filename="report.pdf"`,
	`Content-Transfer-Encoding: base64`,
	``,
	`JVBERi0xLjQK`,
	`--outer--`,
	``,
}, "\r\n")

func envelopeFields(form url.Values) {
	form.Set("sender", "bob@example.com")
	form.Set("recipient", "alice@example.com")
	form.Set("stripped-text", "Report attached.")
	form.Set("stripped-html", "<p>Report attached.</p>")
}

func TestInboundMapper_RawMIMEBranch(t *testing.T) {
	form := signedForm(map[string]string{"body-mime": rawInboundMessage})
	envelopeFields(form)

	event, err := InboundMapper{}.Map(core.InboundRequest{Form: form})
	if err != nil {
		t.Fatalf("map raw inbound: %v", err)
	}
	msg := event.Message
	if event.EventType != core.EventTypeInbound {
		t.Fatalf("expected inbound event type, got %q", event.EventType)
	}
	if event.EventID != form.Get("token") {
		t.Fatalf("expected event id from token, got %q", event.EventID)
	}
	if msg.Subject() != "Quarterly report" {
		t.Fatalf("unexpected subject %q", msg.Subject())
	}
	if msg.Text != "Report attached." {
		t.Fatalf("unexpected text %q", msg.Text)
	}
	if msg.HTML != `<p>Report attached.<img src="cid:logo@example.com"></p>` {
		t.Fatalf("unexpected html %q", msg.HTML)
	}
	if len(msg.Attachments) != 2 {
		t.Fatalf("expected two attachments, got %d", len(msg.Attachments))
	}
	if _, ok := msg.InlineAttachments()["logo@example.com"]; !ok {
		t.Fatalf("expected inline logo attachment, got %#v", msg.Attachments)
	}
	if regular := msg.RegularAttachments(); len(regular) != 1 || regular[0].Filename != "report.pdf" {
		t.Fatalf("expected report.pdf regular attachment, got %#v", regular)
	}
	if msg.EnvelopeSender != "bob@example.com" || msg.EnvelopeRecipient != "alice@example.com" {
		t.Fatalf("unexpected envelope %q -> %q", msg.EnvelopeSender, msg.EnvelopeRecipient)
	}
	if msg.StrippedText != "Report attached." || msg.StrippedHTML != "<p>Report attached.</p>" {
		t.Fatalf("unexpected stripped bodies %q %q", msg.StrippedText, msg.StrippedHTML)
	}
	if msg.SpamDetected || msg.SpamScore != nil {
		t.Fatalf("expected no spam data, got %v %v", msg.SpamDetected, msg.SpamScore)
	}
}

func TestInboundMapper_BranchesProduceEquivalentMessages(t *testing.T) {
	rawForm := signedForm(map[string]string{"body-mime": rawInboundMessage})
	envelopeFields(rawForm)
	fromRaw, err := InboundMapper{}.Map(core.InboundRequest{Form: rawForm})
	if err != nil {
		t.Fatalf("map raw inbound: %v", err)
	}

	pairs := make([][]string, 0, len(fromRaw.Message.Header))
	for _, field := range fromRaw.Message.Header {
		pairs = append(pairs, []string{field.Name, field.Value})
	}
	headers, err := json.Marshal(pairs)
	if err != nil {
		t.Fatalf("encode headers: %v", err)
	}
	parsedForm := signedForm(map[string]string{
		"message-headers":  string(headers),
		"body-plain":       "Report attached.",
		"body-html":        `<p>Report attached.<img src="cid:logo@example.com"></p>`,
		"attachment-count": "2",
		"content-id-map":   `{"<logo@example.com>": "attachment-1"}`,
	})
	envelopeFields(parsedForm)
	req := core.InboundRequest{
		Form: parsedForm,
		Files: map[string][]core.UploadedFile{
			"attachment-1": {{Filename: "logo.png", ContentType: "image/png", Content: []byte("\x89PNG\r\n\x1a\n")}},
			"attachment-2": {{Filename: "report.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4\n")}},
		},
	}
	fromParsed, err := InboundMapper{}.Map(req)
	if err != nil {
		t.Fatalf("map parsed inbound: %v", err)
	}

	assertEquivalentMessages(t, fromRaw.Message, fromParsed.Message)
}

func assertEquivalentMessages(t *testing.T, want core.Message, got core.Message) {
	t.Helper()
	if len(want.Header) != len(got.Header) {
		t.Fatalf("header count mismatch: %d vs %d", len(want.Header), len(got.Header))
	}
	for i := range want.Header {
		if want.Header[i] != got.Header[i] {
			t.Fatalf("header %d mismatch: %#v vs %#v", i, want.Header[i], got.Header[i])
		}
	}
	if want.Text != got.Text || want.HTML != got.HTML {
		t.Fatalf("body mismatch: %q/%q vs %q/%q", want.Text, want.HTML, got.Text, got.HTML)
	}
	if len(want.Attachments) != len(got.Attachments) {
		t.Fatalf("attachment count mismatch: %d vs %d", len(want.Attachments), len(got.Attachments))
	}
	for i := range want.Attachments {
		a, b := want.Attachments[i], got.Attachments[i]
		if string(a.Content) != string(b.Content) ||
			a.Filename != b.Filename ||
			a.ContentType != b.ContentType ||
			a.ContentID != b.ContentID ||
			a.Inline != b.Inline {
			t.Fatalf("attachment %d mismatch: %#v vs %#v", i, a, b)
		}
	}
	if want.EnvelopeSender != got.EnvelopeSender ||
		want.EnvelopeRecipient != got.EnvelopeRecipient ||
		want.StrippedText != got.StrippedText ||
		want.StrippedHTML != got.StrippedHTML {
		t.Fatalf("envelope mismatch: %#v vs %#v", want, got)
	}
}

func TestInboundMapper_ConsumesExactlyAttachmentCountFiles(t *testing.T) {
	form := signedForm(map[string]string{
		"message-headers":  `[["Subject","Files"]]`,
		"attachment-count": "2",
		"content-id-map":   `{"<img1@example.com>": "attachment-2"}`,
	})
	req := core.InboundRequest{
		Form: form,
		Files: map[string][]core.UploadedFile{
			"attachment-1": {{Filename: "a.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("a")}},
			"attachment-2": {{Filename: "b.png", ContentType: "image/png", Content: []byte("b")}},
			"attachment-3": {{Filename: "c.txt", Content: []byte("c")}},
		},
	}

	event, err := InboundMapper{}.Map(req)
	if err != nil {
		t.Fatalf("map parsed inbound: %v", err)
	}
	attachments := event.Message.Attachments
	if len(attachments) != 2 {
		t.Fatalf("expected exactly two attachments, got %d", len(attachments))
	}
	if attachments[0].Filename != "a.txt" || attachments[0].ContentID != "" || attachments[0].Inline {
		t.Fatalf("expected attachment-1 without content id, got %#v", attachments[0])
	}
	if attachments[0].ContentType != "text/plain" {
		t.Fatalf("expected media type without params, got %q", attachments[0].ContentType)
	}
	if attachments[1].Filename != "b.png" || attachments[1].ContentID != "<img1@example.com>" || !attachments[1].Inline {
		t.Fatalf("expected attachment-2 with inverted content id, got %#v", attachments[1])
	}
	if event.Message.Subject() != "Files" {
		t.Fatalf("unexpected subject %q", event.Message.Subject())
	}
}

func TestInboundMapper_MalformedFieldsEscalate(t *testing.T) {
	cases := map[string]core.InboundRequest{
		"missing message-headers": {Form: signedForm(nil)},
		"malformed message-headers": {Form: signedForm(map[string]string{
			"message-headers": "not json",
		})},
		"malformed attachment-count": {Form: signedForm(map[string]string{
			"message-headers":  `[]`,
			"attachment-count": "two",
		})},
		"negative attachment-count": {Form: signedForm(map[string]string{
			"message-headers":  `[]`,
			"attachment-count": "-1",
		})},
		"malformed content-id-map": {Form: signedForm(map[string]string{
			"message-headers":  `[]`,
			"attachment-count": "1",
			"content-id-map":   `["attachment-1"]`,
		}), Files: map[string][]core.UploadedFile{"attachment-1": {{Filename: "a"}}}},
		"missing attachment file": {Form: signedForm(map[string]string{
			"message-headers":  `[]`,
			"attachment-count": "2",
		}), Files: map[string][]core.UploadedFile{"attachment-1": {{Filename: "a"}}}},
		"malformed body-mime": {Form: signedForm(map[string]string{
			"body-mime": "Content-Type: multipart/mixed\r\n\r\nno boundary",
		})},
		"missing timestamp": {Form: url.Values{"body-mime": {"Subject: hi\r\n\r\nbody"}}},
	}
	for name, req := range cases {
		_, err := InboundMapper{}.Map(req)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if core.TextCode(err) != core.ErrorBadPayload {
			t.Fatalf("%s: expected bad payload, got %q (%v)", name, core.TextCode(err), err)
		}
		if core.HTTPStatus(err) != 400 {
			t.Fatalf("%s: expected 400, got %d", name, core.HTTPStatus(err))
		}
	}
}

func TestSpamFields(t *testing.T) {
	header := core.Header{{Name: "x-mailgun-sflag", Value: "YES"}, {Name: "X-Mailgun-Sscore", Value: " 5.5 "}}
	if !SpamDetected(header) {
		t.Fatalf("expected case-insensitive spam flag")
	}
	score := SpamScore(header)
	if score == nil || *score != 5.5 {
		t.Fatalf("expected spam score 5.5, got %v", score)
	}

	if SpamDetected(core.Header{{Name: "X-Mailgun-Sflag", Value: "No"}}) {
		t.Fatalf("expected No flag to be false")
	}
	if SpamDetected(nil) {
		t.Fatalf("expected missing flag to be false")
	}
	if SpamScore(core.Header{{Name: "X-Mailgun-Sscore", Value: "high"}}) != nil {
		t.Fatalf("expected non-numeric score to be unset")
	}
	if SpamScore(nil) != nil {
		t.Fatalf("expected missing score to be unset")
	}
}

func TestInboundMapper_SpamVerdictFromMessageHeaders(t *testing.T) {
	rawForm := signedForm(map[string]string{
		"body-mime": "X-Mailgun-Sflag: Yes\r\nX-Mailgun-Sscore: 5.5\r\nSubject: hi\r\n\r\nbody",
	})
	parsedForm := signedForm(map[string]string{
		"message-headers": `[["X-Mailgun-Sflag","Yes"],["X-Mailgun-Sscore","5.5"],["Subject","hi"]]`,
		"body-plain":      "body",
	})
	for name, form := range map[string]url.Values{"raw": rawForm, "parsed": parsedForm} {
		event, err := InboundMapper{}.Map(core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("%s: map inbound: %v", name, err)
		}
		msg := event.Message
		if !msg.SpamDetected {
			t.Fatalf("%s: expected spam flag from message header", name)
		}
		if msg.SpamScore == nil || *msg.SpamScore != 5.5 {
			t.Fatalf("%s: expected spam score 5.5, got %v", name, msg.SpamScore)
		}
	}
}

func TestInboundMapper_IgnoresSpamFieldsOutsideTheMessage(t *testing.T) {
	form := signedForm(map[string]string{
		"body-mime":        "Subject: hi\r\n\r\nbody",
		"X-Mailgun-Sflag":  "Yes",
		"X-Mailgun-Sscore": "5.5",
	})
	event, err := InboundMapper{}.Map(core.InboundRequest{Form: form})
	if err != nil {
		t.Fatalf("map inbound: %v", err)
	}
	if event.Message.SpamDetected || event.Message.SpamScore != nil {
		t.Fatalf("expected form fields not to set the spam verdict, got %v %v", event.Message.SpamDetected, event.Message.SpamScore)
	}
}

func TestInboundMapper_SpamScoreFailureIsNotAnError(t *testing.T) {
	form := signedForm(map[string]string{
		"body-mime": "X-Mailgun-Sflag: Yes\r\nX-Mailgun-Sscore: n/a\r\nSubject: hi\r\n\r\nbody",
	})
	events, err := InboundMapper{}.Parse(context.Background(), core.InboundRequest{Form: form})
	if err != nil {
		t.Fatalf("parse inbound: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	msg := events[0].Message
	if !msg.SpamDetected || msg.SpamScore != nil {
		t.Fatalf("expected spam flag without score, got %v %v", msg.SpamDetected, msg.SpamScore)
	}
	if msg.Text != "body" {
		t.Fatalf("expected single-part text body, got %q", msg.Text)
	}
}
