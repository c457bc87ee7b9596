// Package envelope models the raw webhook wrapper the capture endpoint
// writes to staging: the original request's headers, body, and method.
package envelope

import "encoding/json"

// Envelope is the staged wrapper around one inbound webhook request.
// Body holds the source-specific payload: a JSON object for most sources,
// or a JSON string when the original body was not valid JSON.
type Envelope struct {
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
	Method  string            `json:"method"`
}

// Decode parses stored envelope bytes. A decode failure means the staged
// object is not one of ours (or was corrupted) and should be quarantined.
func Decode(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// BodyObject try-parses the body as a JSON object. ok=false means the body
// is absent, a string, or otherwise not an object; callers use this as a
// branch signal, never as an error.
func (e *Envelope) BodyObject() (map[string]json.RawMessage, bool) {
	if len(e.Body) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// Header returns the named header value, tolerating a nil header map.
func (e *Envelope) Header(name string) string {
	if e.Headers == nil {
		return ""
	}
	return e.Headers[name]
}
