package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The client classifies every failure into exactly one of four kinds:
// configuration errors never touch the network, transport errors got no
// response, protocol errors carry the gateway's HTTP status and its
// most specific message, decode errors mean the body was not the
// expected JSON shape.

// ConfigurationError reports a missing or invalid gateway config or
// protocol address. It is raised before any network I/O is attempted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gateway configuration error: %s", e.Reason)
}

// TransportError reports that no response reached the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a non-success HTTP outcome. Detail is the most
// specific message the response body offered.
type ProtocolError struct {
	Op     string
	Status int
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gateway returned %d during %s: %s", e.Status, e.Op, e.Detail)
}

// DecodeError reports a response body that could not be parsed as the
// expected JSON shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gateway response for %s could not be decoded: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// extractErrorDetail pulls the most specific human-readable message out
// of an error response body: a structured message field first, then a
// generic error field, then the raw body.
func extractErrorDetail(body []byte) string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if detail := flattenDetail(envelope.Message); detail != "" {
			return detail
		}
		if detail := flattenDetail(envelope.Error); detail != "" {
			return detail
		}
	}
	return strings.TrimSpace(string(body))
}

// flattenDetail accepts the message field as a plain string or as an
// array of strings and joins the latter.
func flattenDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	return ""
}
