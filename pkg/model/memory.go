package model

import (
	"encoding/json"
	"reflect"

	"github.com/m-mizutani/goerr/v2"
)

const (
	MaxFacts           = 20
	MaxInterests       = 10
	MaxGoals           = 5
	MaxImportantEvents = 10
)

// ImportantEvent is a dated fact worth bringing back into conversation.
// Unknown keys of an entry are kept in Extra.
type ImportantEvent struct {
	Date  string
	Event string

	Extra map[string]json.RawMessage
}

var importantEventKeys = []string{"date", "event"}

func (e ImportantEvent) MarshalJSON() ([]byte, error) {
	return mergeFields(struct {
		Date  string `json:"date"`
		Event string `json:"event"`
	}{e.Date, e.Event}, e.Extra)
}

func (e *ImportantEvent) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return goerr.Wrap(err, "failed to unmarshal important event")
	}

	*e = ImportantEvent{}
	decodeField(all, "date", &e.Date)
	decodeField(all, "event", &e.Event)
	e.Extra = leftover(all, importantEventKeys)
	return nil
}

// Memory is the long-lived knowledge the companion keeps about one user.
// Keys that this version does not know about are kept in Extra so that
// load/save never drops data written by a newer or older release.
type Memory struct {
	Name            string
	Job             string
	Partner         string
	FamilyMention   string
	HealthMention   string
	RecentMood      string
	Facts           []string
	Interests       []string
	Goals           []string
	ImportantEvents []ImportantEvent

	Extra map[string]json.RawMessage
}

// NewMemory returns the initial memory of a freshly registered user
func NewMemory(name string) *Memory {
	return &Memory{
		Name:            name,
		Facts:           []string{},
		Interests:       []string{},
		Goals:           []string{},
		ImportantEvents: []ImportantEvent{},
	}
}

var memoryKeys = []string{
	"name", "job", "partner", "family_mention", "health_mention", "recent_mood",
	"facts", "interests", "goals", "important_events",
}

type memoryJSON struct {
	Name            string           `json:"name,omitempty"`
	Job             string           `json:"job,omitempty"`
	Partner         string           `json:"partner,omitempty"`
	FamilyMention   string           `json:"family_mention,omitempty"`
	HealthMention   string           `json:"health_mention,omitempty"`
	RecentMood      string           `json:"recent_mood,omitempty"`
	Facts           []string         `json:"facts"`
	Interests       []string         `json:"interests"`
	Goals           []string         `json:"goals"`
	ImportantEvents []ImportantEvent `json:"important_events"`
}

func (m Memory) MarshalJSON() ([]byte, error) {
	known := memoryJSON{
		Name:            m.Name,
		Job:             m.Job,
		Partner:         m.Partner,
		FamilyMention:   m.FamilyMention,
		HealthMention:   m.HealthMention,
		RecentMood:      m.RecentMood,
		Facts:           nonNil(m.Facts),
		Interests:       nonNil(m.Interests),
		Goals:           nonNil(m.Goals),
		ImportantEvents: m.ImportantEvents,
	}
	if known.ImportantEvents == nil {
		known.ImportantEvents = []ImportantEvent{}
	}

	raw, err := mergeFields(known, m.Extra)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal memory")
	}
	return raw, nil
}

// UnmarshalJSON decodes every known key on its own. A known key whose value
// has an unexpected shape stays in Extra untouched, so it is written back as
// it was until the field gets a value again.
func (m *Memory) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return goerr.Wrap(err, "failed to unmarshal memory")
	}

	*m = Memory{}
	fields := map[string]any{
		"name":             &m.Name,
		"job":              &m.Job,
		"partner":          &m.Partner,
		"family_mention":   &m.FamilyMention,
		"health_mention":   &m.HealthMention,
		"recent_mood":      &m.RecentMood,
		"facts":            &m.Facts,
		"interests":        &m.Interests,
		"goals":            &m.Goals,
		"important_events": &m.ImportantEvents,
	}
	var failed []string
	for key, dst := range fields {
		if !decodeField(all, key, dst) {
			failed = append(failed, key)
		}
	}

	m.Extra = leftover(all, memoryKeys)
	for _, key := range failed {
		if m.Extra == nil {
			m.Extra = map[string]json.RawMessage{}
		}
		m.Extra[key] = all[key]
	}
	return nil
}

// ParseMemory decodes a stored memory document. An empty or broken document
// yields an empty memory instead of an error, so a bad row never blocks a chat.
func ParseMemory(raw string) *Memory {
	m := &Memory{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return &Memory{}
	}
	return m
}

// decodeField decodes all[key] into dst. It reports false only when the key
// is present and its value does not fit dst, leaving dst as it was.
func decodeField(all map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := all[key]
	if !ok {
		return true
	}
	// decode into a fresh value; a failed Unmarshal may leave dst half filled
	tmp := reflect.New(reflect.TypeOf(dst).Elem())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		return false
	}
	reflect.ValueOf(dst).Elem().Set(tmp.Elem())
	return true
}

// leftover returns the entries of all that are not in known, or nil
func leftover(all map[string]json.RawMessage, known []string) map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		extra[k] = v
	}
	for _, k := range known {
		delete(extra, k)
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// mergeFields marshals known and lays its keys over extra. An empty list or
// string in known does not replace a raw value kept in extra under the same key.
func mergeFields(known any, extra map[string]json.RawMessage) ([]byte, error) {
	raw, err := json.Marshal(known)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal fields")
	}
	if len(extra) == 0 {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, goerr.Wrap(err, "failed to merge fields")
	}
	merged := make(map[string]json.RawMessage, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		if _, kept := extra[k]; kept && isEmptyJSON(v) {
			continue
		}
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal merged fields")
	}
	return out, nil
}

func isEmptyJSON(v json.RawMessage) bool {
	switch string(v) {
	case "[]", `""`, "null":
		return true
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
