package meta

import (
	"encoding/json"
	"fmt"
)

// Author is who made a commit: a Human or an Agent. It is descriptive only.
type Author interface {
	fmt.Stringer
	isAuthor()
}

// Human is a person editing the vault.
type Human struct {
	Name string
}

// Agent is an AI agent session. Both fields are optional.
type Agent struct {
	Model   string
	Session string
}

func (Human) isAuthor() {}
func (Agent) isAuthor() {}

func (h Human) String() string {
	if h.Name == "" {
		return "human"
	}
	return h.Name
}

func (a Agent) String() string {
	s := "agent"
	if a.Model != "" {
		s += " (" + a.Model + ")"
	}
	if a.Session != "" {
		s += " [" + a.Session + "]"
	}
	return s
}

type authorJSON struct {
	Type    string `json:"type" yaml:"type"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
	Session string `json:"session,omitempty" yaml:"session,omitempty"`
}

func encodeAuthor(a Author) authorJSON {
	switch v := a.(type) {
	case Human:
		return authorJSON{Type: "human", Name: v.Name}
	case *Human:
		return authorJSON{Type: "human", Name: v.Name}
	case Agent:
		return authorJSON{Type: "agent", Model: v.Model, Session: v.Session}
	case *Agent:
		return authorJSON{Type: "agent", Model: v.Model, Session: v.Session}
	default:
		return authorJSON{Type: "human"}
	}
}

func decodeAuthor(j authorJSON) (Author, error) {
	switch j.Type {
	case "human":
		return Human{Name: j.Name}, nil
	case "agent":
		return Agent{Model: j.Model, Session: j.Session}, nil
	default:
		return nil, fmt.Errorf("unknown author type %q", j.Type)
	}
}

// MarshalAuthor encodes a as its tagged JSON form.
func MarshalAuthor(a Author) ([]byte, error) {
	return json.Marshal(encodeAuthor(a))
}

// UnmarshalAuthor decodes the tagged JSON form.
func UnmarshalAuthor(data []byte) (Author, error) {
	var j authorJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return decodeAuthor(j)
}
