package client

import "encoding/json"

// createdEnvelope models the two response shapes /task/new is known to
// produce: the identifier either sits at the top level or is wrapped under a
// "body" key. Both shapes are valid; which one arrives depends on the server
// version in front of us.
type createdEnvelope struct {
	UUID string `json:"uuid"`
	Body struct {
		UUID string `json:"uuid"`
	} `json:"body"`
}

// uuid returns the task identifier, trying the flat shape first and the
// nested shape second.
func (e *createdEnvelope) uuid() (string, bool) {
	if e.UUID != "" {
		return e.UUID, true
	}
	if e.Body.UUID != "" {
		return e.Body.UUID, true
	}
	return "", false
}

// extractUUID pulls the task identifier out of a /task/new response body.
func extractUUID(body []byte) (string, error) {
	env := &createdEnvelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return "", &ProtocolError{Message: "malformed task creation response: " + err.Error()}
	}
	id, ok := env.uuid()
	if !ok {
		return "", &ProtocolError{Message: "identifier missing from response"}
	}
	return id, nil
}
