// Package classify maps failed remote calls to a fixed error taxonomy and
// turns the result into user-facing notifications.
package classify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

// Canned messages used when the status code fixes the wording or the payload
// carries nothing usable.
const (
	MessageNetwork    = "Unable to reach the server. Please check your connection and try again."
	MessageAuth       = "Your session has expired. Please sign in again."
	MessagePermission = "You do not have permission to perform this action."
	MessageNotFound   = "The requested resource was not found."
	MessageConflict   = "This request conflicts with the current state of the resource."
	MessageInvalid    = "The submitted data is invalid."
	MessageRateLimit  = "Too many requests. Please wait a moment and try again."
	MessageServer     = "The server encountered an error. Please try again later."
	MessageGeneric    = "An unexpected error occurred."
)

// Classify maps raw to an ErrorRecord. It never panics; anything it cannot
// interpret becomes an unknown error with the generic message.
func Classify(raw RawError) (rec domain.ErrorRecord) {
	defer func() {
		if recover() != nil {
			rec = domain.ErrorRecord{Kind: domain.ErrorKindUnknown, Message: MessageGeneric}
		}
	}()

	switch r := raw.(type) {
	case TransportError:
		return network(0)
	case *TransportError:
		return network(0)
	case HTTPError:
		return classifyHTTP(r)
	case *HTTPError:
		if r != nil {
			return classifyHTTP(*r)
		}
	case UnknownError:
		if s, ok := r.Raw.(string); ok && strings.TrimSpace(s) != "" {
			return domain.ErrorRecord{Kind: domain.ErrorKindUnknown, Message: strings.TrimSpace(s)}
		}
	}
	return domain.ErrorRecord{Kind: domain.ErrorKindUnknown, Message: MessageGeneric}
}

func network(status int) domain.ErrorRecord {
	return domain.ErrorRecord{
		Kind:      domain.ErrorKindNetwork,
		Message:   MessageNetwork,
		Retriable: true,
		Status:    status,
	}
}

func classifyHTTP(h HTTPError) domain.ErrorRecord {
	if h.Status == 0 {
		return network(0)
	}

	p := parsePayload(h.Body)
	rec := domain.ErrorRecord{Status: h.Status}

	switch {
	case h.Status == http.StatusUnauthorized:
		rec.Kind, rec.Message = domain.ErrorKindAuth, MessageAuth
	case h.Status == http.StatusForbidden:
		rec.Kind, rec.Message = domain.ErrorKindPermission, MessagePermission
	case h.Status == http.StatusNotFound:
		rec.Kind, rec.Message = domain.ErrorKindUnknown, p.messageOr(MessageNotFound)
	case h.Status == http.StatusRequestTimeout:
		return network(h.Status)
	case h.Status == http.StatusConflict:
		rec.Kind, rec.Message, rec.Fields = domain.ErrorKindValidation, p.messageOr(MessageConflict), p.fields
	case h.Status == http.StatusBadRequest || h.Status == http.StatusUnprocessableEntity:
		rec.Kind, rec.Message, rec.Fields = domain.ErrorKindValidation, p.messageOr(MessageInvalid), p.fields
	case h.Status == http.StatusTooManyRequests:
		rec.Kind, rec.Message, rec.Retriable = domain.ErrorKindServer, MessageRateLimit, true
	case h.Status >= 500:
		rec.Kind, rec.Message, rec.Retriable = domain.ErrorKindServer, MessageServer, true
	default:
		rec.Kind, rec.Message = domain.ErrorKindUnknown, p.messageOr(MessageGeneric)
	}
	return rec
}

// payload is what could be read out of an error response body.
type payload struct {
	message string
	fields  map[string]string
}

func (p payload) messageOr(fallback string) string {
	if p.message != "" {
		return p.message
	}
	return fallback
}

// parsePayload resolves the message in this order: the first entry of an
// "errors" collection, a "message" field (top level or inside an "error"
// object), a top-level "error" string, and finally a bare JSON string body.
func parsePayload(body []byte) payload {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return payload{}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var s string
		if json.Unmarshal(body, &s) == nil {
			return payload{message: strings.TrimSpace(s)}
		}
		return payload{}
	}

	var p payload
	if raw, ok := obj["errors"]; ok {
		p.message, p.fields = validationErrors(raw)
	}

	var envelope struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if raw, ok := obj["error"]; ok {
		_ = json.Unmarshal(raw, &envelope)
	}
	if p.fields == nil && len(envelope.Fields) > 0 {
		p.fields = envelope.Fields
	}

	if p.message == "" {
		p.message = firstNonEmpty(text(obj["message"]), strings.TrimSpace(envelope.Message), stringValue(obj["error"]))
	}
	return p
}

// validationErrors reads either [{field, message}, ...] or
// {field: [message, ...], ...}. The first entry in document order supplies
// the message.
func validationErrors(raw json.RawMessage) (string, map[string]string) {
	fields := make(map[string]string)
	first := ""

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, entry := range list {
			msg := text(entry)
			var named struct {
				Field string `json:"field"`
			}
			if json.Unmarshal(entry, &named) == nil && named.Field != "" && msg != "" {
				if _, seen := fields[named.Field]; !seen {
					fields[named.Field] = msg
				}
			}
			if first == "" {
				first = msg
			}
		}
	} else {
		for _, e := range orderedEntries(raw) {
			msg := text(e.value)
			if msg == "" {
				continue
			}
			if first == "" {
				first = msg
			}
			if _, seen := fields[e.key]; !seen {
				fields[e.key] = msg
			}
		}
	}

	if len(fields) == 0 {
		fields = nil
	}
	return first, fields
}

type entry struct {
	key   string
	value json.RawMessage
}

// orderedEntries decodes a JSON object keeping its key order.
func orderedEntries(raw json.RawMessage) []entry {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		out = append(out, entry{key: key, value: value})
	}
	return out
}

// text extracts a message from a string, the first usable element of an
// array, or the "message" field of an object.
func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if s := stringValue(raw); s != "" {
		return s
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			if s := text(item); s != "" {
				return s
			}
		}
		return ""
	}

	var obj struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return stringValue(obj.Message)
	}
	return ""
}

func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
