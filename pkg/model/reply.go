package model

import "strings"

// NoneSentinel marks an explicitly empty field in model output
const NoneSentinel = "NONE"

// ParsedReply holds the three fields extracted from raw model text.
// Empty MemoryUpdate or Reminder means the field was absent.
type ParsedReply struct {
	Reply        string `json:"reply"`
	MemoryUpdate string `json:"memory_update,omitempty"`
	Reminder     string `json:"reminder,omitempty"`
}

// String renders the reply in the canonical three-line output format
func (p ParsedReply) String() string {
	var b strings.Builder
	b.WriteString("REPLY: ")
	b.WriteString(p.Reply)
	b.WriteString("\nMEMORY_UPDATE: ")
	b.WriteString(orNone(p.MemoryUpdate))
	b.WriteString("\nREMINDER: ")
	b.WriteString(orNone(p.Reminder))
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return NoneSentinel
	}
	return s
}
