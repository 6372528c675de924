package mailgun

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

// rejectReasonExceptions lists the SMTP codes that do not follow the
// 400-599 => bounced rule. The 6xx codes are Mailgun extensions.
var rejectReasonExceptions = map[int]core.RejectReason{
	499: core.RejectReasonTimedOut, // unable to connect to MX
	605: core.RejectReasonBounced,  // previous bounce
	607: core.RejectReasonSpam,     // previous spam complaint
}

// ResolveRejectReason derives a reject reason from a Mailgun "code" field.
// Integer SMTP codes go through the exception table and then the numeric
// range rule. RFC 3463 extended codes (class.subject.detail) are classified
// by status class. Anything else, including an absent code, is unset.
func ResolveRejectReason(code string, present bool) core.RejectReason {
	if !present {
		return core.RejectReasonUnset
	}
	trimmed := strings.TrimSpace(code)
	if status, err := strconv.Atoi(trimmed); err == nil {
		return rejectReasonForStatus(status)
	}
	if class, ok := extendedStatusClass(trimmed); ok {
		if class == "4" || class == "5" {
			return core.RejectReasonBounced
		}
		return core.RejectReasonOther
	}
	return core.RejectReasonUnset
}

func rejectReasonForStatus(status int) core.RejectReason {
	if reason, ok := rejectReasonExceptions[status]; ok {
		return reason
	}
	if status >= 400 && status < 600 {
		return core.RejectReasonBounced
	}
	return core.RejectReasonOther
}

// extendedStatusClass returns the class segment of a class.subject.detail
// status code. Each segment must be 1-3 digits.
func extendedStatusClass(code string) (string, bool) {
	segments := strings.Split(code, ".")
	if len(segments) != 3 {
		return "", false
	}
	for _, segment := range segments {
		if len(segment) == 0 || len(segment) > 3 || !isDigits(segment) {
			return "", false
		}
	}
	return segments[0], true
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
