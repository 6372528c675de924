package webhooks

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/goliatone/go-mailhooks/core"
)

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, core.InboundRequest) error {
	s.calls++
	return s.err
}

type recordingSink struct {
	events []string
	err    error
}

func (s *recordingSink) Emit(_ context.Context, event string) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func splitParser(_ context.Context, req core.InboundRequest) ([]string, error) {
	return req.Form["item"], nil
}

func TestProcessor_EmitsEveryParsedEventInOrder(t *testing.T) {
	sink := &recordingSink{}
	processor := NewProcessor[string]("Acme", " Tracking ", &stubVerifier{}, ParserFunc[string](splitParser), sink)
	if processor.ProviderID() != "acme" || processor.Surface() != "tracking" {
		t.Fatalf("expected normalized route, got %s/%s", processor.ProviderID(), processor.Surface())
	}

	result, err := processor.Handle(context.Background(), core.InboundRequest{
		Form: map[string][]string{"item": {"a", "b", "c"}},
	})
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if !result.Accepted || result.StatusCode != http.StatusOK {
		t.Fatalf("expected accepted 200, got %#v", result)
	}
	if result.Metadata["event_count"] != 3 {
		t.Fatalf("expected event_count 3, got %v", result.Metadata["event_count"])
	}
	if len(sink.events) != 3 || sink.events[0] != "a" || sink.events[2] != "c" {
		t.Fatalf("expected events emitted in order, got %v", sink.events)
	}
}

func TestProcessor_VerificationFailureStopsPipeline(t *testing.T) {
	sink := &recordingSink{}
	parsed := false
	parser := ParserFunc[string](func(context.Context, core.InboundRequest) ([]string, error) {
		parsed = true
		return nil, nil
	})
	processor := NewProcessor[string]("acme", "tracking", &stubVerifier{err: errors.New("bad signature")}, parser, sink)

	result, err := processor.Handle(context.Background(), core.InboundRequest{})
	if err == nil {
		t.Fatalf("expected verification failure")
	}
	if core.TextCode(err) != core.ErrorValidationFailed {
		t.Fatalf("expected plain verifier error wrapped as validation failure, got %q", core.TextCode(err))
	}
	if result.Accepted || result.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected rejected 401 result, got %#v", result)
	}
	if result.Metadata["rejected"] != true {
		t.Fatalf("expected rejected marker in metadata")
	}
	if parsed || len(sink.events) != 0 {
		t.Fatalf("expected parse and emit to be skipped")
	}
}

func TestProcessor_ParseFailureIsBadPayload(t *testing.T) {
	parser := ParserFunc[string](func(context.Context, core.InboundRequest) ([]string, error) {
		return nil, errors.New("unexpected field")
	})
	processor := NewProcessor[string]("acme", "inbound", nil, parser, &recordingSink{})

	_, err := processor.Handle(context.Background(), core.InboundRequest{})
	if core.TextCode(err) != core.ErrorBadPayload {
		t.Fatalf("expected bad payload, got %v", err)
	}
	if core.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", core.HTTPStatus(err))
	}
}

func TestProcessor_KeepsParserTextCode(t *testing.T) {
	parser := ParserFunc[string](func(context.Context, core.InboundRequest) ([]string, error) {
		return nil, core.ConfigInvalid("missing mapping", nil)
	})
	processor := NewProcessor[string]("acme", "inbound", nil, parser, &recordingSink{})

	_, err := processor.Handle(context.Background(), core.InboundRequest{})
	if core.TextCode(err) != core.ErrorConfigInvalid {
		t.Fatalf("expected parser text code preserved, got %q", core.TextCode(err))
	}
}

func TestProcessor_SinkFailureIsEmitError(t *testing.T) {
	sink := &recordingSink{err: errors.New("downstream offline")}
	processor := NewProcessor[string]("acme", "tracking", nil, ParserFunc[string](splitParser), sink)

	_, err := processor.Handle(context.Background(), core.InboundRequest{
		Form: map[string][]string{"item": {"a"}},
	})
	if core.TextCode(err) != core.ErrorEmitFailed {
		t.Fatalf("expected emit failure, got %v", err)
	}
	if core.HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", core.HTTPStatus(err))
	}
}

func TestProcessor_RequiresParserAndSink(t *testing.T) {
	var processor *Processor[string]
	if _, err := processor.Handle(context.Background(), core.InboundRequest{}); core.TextCode(err) != core.ErrorInternal {
		t.Fatalf("expected internal error for nil processor, got %v", err)
	}
	processor = NewProcessor[string]("acme", "tracking", nil, nil, &recordingSink{})
	if _, err := processor.Handle(context.Background(), core.InboundRequest{}); core.TextCode(err) != core.ErrorInternal {
		t.Fatalf("expected internal error without parser, got %v", err)
	}
}
