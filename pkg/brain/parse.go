package brain

import (
	"strings"

	"github.com/fa-friend/fa/pkg/model"
)

const (
	markerReply    = "REPLY:"
	markerMemory   = "MEMORY_UPDATE:"
	markerReminder = "REMINDER:"
)

// ParseModelReply splits raw model output into reply, memory update and
// reminder. It is best effort: malformed input yields at worst an empty reply.
func ParseModelReply(raw string) model.ParsedReply {
	var out model.ParsedReply

	if i := strings.Index(raw, markerMemory); i >= 0 {
		rest := raw[i+len(markerMemory):]
		if j := strings.Index(rest, markerReminder); j >= 0 {
			rest = rest[:j]
		}
		out.MemoryUpdate = fieldValue(rest)
	}

	if i := strings.Index(raw, markerReminder); i >= 0 {
		out.Reminder = fieldValue(raw[i+len(markerReminder):])
	}

	if i := strings.Index(raw, markerReply); i >= 0 {
		rest := raw[i+len(markerReply):]
		out.Reply = strings.TrimSpace(rest[:nextMarker(rest, markerMemory, markerReminder)])
	} else {
		// No reply label: keep the text before the structured fields
		out.Reply = strings.TrimSpace(raw[:nextMarker(raw, markerMemory, markerReminder)])
	}

	return out
}

// nextMarker returns the index of the earliest marker in s, or len(s)
func nextMarker(s string, markers ...string) int {
	end := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < end {
			end = i
		}
	}
	return end
}

func fieldValue(s string) string {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, model.NoneSentinel) {
		return ""
	}
	return v
}
