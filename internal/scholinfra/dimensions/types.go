package dimensions

import (
	"encoding/json"
)

// authRequest is the body posted to auth.json.
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the body returned by auth.json.
type authResponse struct {
	Token string `json:"token"`
}

// dslResponse is the subset of a dsl.json body the client reads. Each
// publication is kept raw so its fields can be decoded in order.
type dslResponse struct {
	Publications []json.RawMessage `json:"publications"`
	Errors       *dslErrors        `json:"errors,omitempty"`
}

type dslErrors struct {
	Query *struct {
		Header  string   `json:"header"`
		Details []string `json:"details"`
	} `json:"query,omitempty"`
}

func (e *dslErrors) message() string {
	if e == nil || e.Query == nil {
		return "query rejected"
	}
	msg := e.Query.Header
	for _, d := range e.Query.Details {
		msg += "; " + d
	}
	return msg
}
