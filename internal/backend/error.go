package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const GenericMessage = "Something went wrong. Please try again."

var ErrUnexpectedResponse = errors.New("unexpected backend response")

// BackendError is any failed call to the storefront API. Message is the
// backend's own explanation when it sent one.
type BackendError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = GenericMessage
	}
	if e.Status > 0 {
		return fmt.Sprintf("backend %s: %d: %s", e.Endpoint, e.Status, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Endpoint, msg, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Endpoint, msg)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// errorBody covers every error shape the backend sends.
type errorBody struct {
	Details any    `json:"details"`
	Error   any    `json:"error"`
	Message string `json:"message"`
}

// messageFromBody picks details, then error, then message.
func messageFromBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	for _, v := range []any{eb.Details, eb.Error, eb.Message} {
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if m, ok := t["message"].(string); ok {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// UserMessage is what a shopper should see for err: the backend's message
// when there is one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}
