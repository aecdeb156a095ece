package service

import (
	"bytes"
	"encoding/json"
)

// TextID is an identifier the server may send as a JSON string or number.
type TextID string

// UnmarshalJSON accepts strings and numbers. Anything else leaves the id empty.
func (id *TextID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = TextID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = TextID(n.String())
	}
	return nil
}

// TaskRecord is one task as returned by a search.
type TaskRecord struct {
	TodoID      TextID `json:"todo_id"`
	AltID       TextID `json:"id"`
	Description string `json:"description"`
	Project     string `json:"project"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// ID returns the server id, preferring todo_id over id.
func (t TaskRecord) ID() string {
	if t.TodoID != "" {
		return string(t.TodoID)
	}
	return string(t.AltID)
}

// CreatedTask is the create-task response.
type CreatedTask struct {
	TodoID TextID          `json:"todo_id"`
	AltID  TextID          `json:"id"`
	Raw    json.RawMessage `json:"-"`
}

// ID returns the server-assigned id, preferring todo_id over id.
func (c CreatedTask) ID() string {
	if c.TodoID != "" {
		return string(c.TodoID)
	}
	return string(c.AltID)
}

// CompletedTask is the complete-task response.
type CompletedTask struct {
	TodoID  TextID          `json:"todo_id"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

// SearchResults is the search response.
type SearchResults struct {
	Items []TaskRecord    `json:"items"`
	Raw   json.RawMessage `json:"-"`
}

// ProjectName is a project entry; servers send either a bare string or an
// object with a name field.
type ProjectName string

// UnmarshalJSON accepts "name" and {"name": "..."}.
func (p *ProjectName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = ProjectName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		*p = ProjectName(obj.Name)
	}
	return nil
}

// ProjectList is the list-projects response.
type ProjectList struct {
	Projects []ProjectName   `json:"projects"`
	Raw      json.RawMessage `json:"-"`
}

// Names returns the non-empty project names in server order.
func (l ProjectList) Names() []string {
	names := make([]string, 0, len(l.Projects))
	for _, p := range l.Projects {
		if p != "" {
			names = append(names, string(p))
		}
	}
	return names
}

// Payload is the set of response schemas.
type Payload interface {
	CreatedTask | CompletedTask | SearchResults | ProjectList
}

// Decode parses a response body into T. Decoding never fails: missing
// fields and fields of the wrong type keep their zero values. The body is
// kept in Raw.
func Decode[T Payload](body []byte) T {
	var v T
	body = bytes.TrimSpace(body)
	if len(body) > 0 {
		_ = json.Unmarshal(body, &v)
	}
	var raw json.RawMessage
	if len(body) > 0 {
		raw = append(json.RawMessage(nil), body...)
	}
	switch p := any(&v).(type) {
	case *CreatedTask:
		p.Raw = raw
	case *CompletedTask:
		p.Raw = raw
	case *SearchResults:
		p.Raw = raw
	case *ProjectList:
		p.Raw = raw
	}
	return v
}
