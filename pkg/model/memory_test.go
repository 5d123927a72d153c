package model_test

import (
	"encoding/json"
	"testing"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestMemoryUnknownKeysRoundTrip(t *testing.T) {
	raw := `{"name":"ต้น","facts":["ชอบแมว"],"pet":{"kind":"cat","age":3},"nickname":"ton"}`

	var m model.Memory
	gt.NoError(t, json.Unmarshal([]byte(raw), &m))
	gt.Equal(t, m.Name, "ต้น")
	gt.A(t, m.Facts).Length(1)
	gt.Map(t, m.Extra).HasKey("pet")
	gt.Map(t, m.Extra).HasKey("nickname")

	m.Job = "นักศึกษา"
	out, err := json.Marshal(m)
	gt.NoError(t, err)

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(out, &decoded))
	gt.Equal(t, decoded["nickname"], any("ton"))
	gt.Equal(t, decoded["job"], any("นักศึกษา"))
	pet, ok := decoded["pet"].(map[string]any)
	gt.True(t, ok)
	gt.Equal(t, pet["kind"], any("cat"))
}

func TestParseMemoryKeepsFieldsAroundBadValue(t *testing.T) {
	raw := `{"name":"A","facts":["f1","f2"],"hobby_score":7,` +
		`"important_events":[{"date":"2025-03-01","event":"สอบ","place":"bkk"}],"interests":"one"}`

	m := model.ParseMemory(raw)
	gt.Equal(t, m.Name, "A")
	gt.Equal(t, m.Facts, []string{"f1", "f2"})
	gt.A(t, m.Interests).Length(0)
	gt.A(t, m.ImportantEvents).Length(1)
	if len(m.ImportantEvents) != 1 {
		t.FailNow()
	}
	gt.Equal(t, m.ImportantEvents[0].Event, "สอบ")
	gt.Map(t, m.ImportantEvents[0].Extra).HasKey("place")

	out, err := json.Marshal(m)
	gt.NoError(t, err)

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(out, &decoded))
	gt.Equal(t, decoded["name"], any("A"))
	gt.Equal(t, decoded["interests"], any("one"))
	gt.Equal(t, decoded["hobby_score"], any(float64(7)))
	events, ok := decoded["important_events"].([]any)
	gt.True(t, ok)
	gt.A(t, events).Length(1)
	if len(events) != 1 {
		t.FailNow()
	}
	event, ok := events[0].(map[string]any)
	gt.True(t, ok)
	gt.Equal(t, event["place"], any("bkk"))
	gt.Equal(t, event["date"], any("2025-03-01"))
}

func TestMemoryBadValueReplacedOnceSet(t *testing.T) {
	m := model.ParseMemory(`{"name":"A","facts":"broken"}`)
	m.Facts = append(m.Facts, "ใหม่")

	out, err := json.Marshal(m)
	gt.NoError(t, err)

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(out, &decoded))
	gt.Equal(t, decoded["facts"], any([]any{"ใหม่"}))
}

func TestNewMemoryShape(t *testing.T) {
	out, err := json.Marshal(model.NewMemory("มิ้น"))
	gt.NoError(t, err)
	gt.Equal(t, string(out), `{"name":"มิ้น","facts":[],"interests":[],"goals":[],"important_events":[]}`)
}

func TestParseMemoryBroken(t *testing.T) {
	m := model.ParseMemory("{not json")
	gt.V(t, m).NotNil()
	gt.Equal(t, m.Name, "")

	m = model.ParseMemory("")
	gt.V(t, m).NotNil()
}

func TestParsedReplyString(t *testing.T) {
	p := model.ParsedReply{Reply: "hi", Reminder: "09:00 x"}
	gt.Equal(t, p.String(), "REPLY: hi\nMEMORY_UPDATE: NONE\nREMINDER: 09:00 x")
}

func TestPersonaOrDefault(t *testing.T) {
	gt.Equal(t, model.Persona("caring").OrDefault(), model.PersonaCaring)
	gt.Equal(t, model.Persona("unknown").OrDefault(), model.PersonaFriendly)
}

func TestSeverityLabel(t *testing.T) {
	gt.Equal(t, model.SeverityCritical.Label(), "[CRITICAL]")
	gt.NoError(t, model.SeverityWarning.Validate())
	gt.Error(t, model.Severity("fatal").Validate())
}
