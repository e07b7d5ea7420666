package edumeal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("edumeal: status %d", e.Status)
	}
	return fmt.Sprintf("edumeal: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// ServerMessage returns the backend's own message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// messageFrom digs a human message out of an error body. The backend answers
// with message, Message, title, error or a field→messages errors map.
func messageFrom(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed
	}

	fields := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		fields[strings.ToLower(k)] = v
	}

	for _, key := range []string{"message", "title", "error"} {
		if s := rawString(fields[key]); s != "" {
			return s
		}
	}

	if raw, ok := fields["errors"]; ok {
		return flattenErrors(raw)
	}
	return ""
}

func flattenErrors(raw json.RawMessage) string {
	var byField map[string][]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var msgs []string
		for _, k := range keys {
			msgs = append(msgs, byField[k]...)
		}
		return strings.Join(msgs, "; ")
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
