package brain

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPromptRaw string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptRaw))

var personaStyles = map[model.Persona]string{
	model.PersonaFriendly:     "เป็นเพื่อนสนิท พูดเป็นกันเอง สนุกสนาน ใช้ภาษาไม่เป็นทางการ",
	model.PersonaCaring:       "เป็นพี่สาวที่อบอุ่น ห่วงใย พูดนุ่มนวล คอยดูแล",
	model.PersonaCheerful:     "เป็นน้องร่าเริง สดใส ให้กำลังใจเก่ง พลังบวก",
	model.PersonaProfessional: "เป็นพี่เลี้ยงที่สุภาพ จัดระเบียบดี พูดชัดเจน",
}

// Monday first, matching time.Weekday shifted by one
var dayNames = []string{"จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์", "อาทิตย์"}

const (
	toneEmpathetic  = "\n- อารมณ์ผู้ใช้ไม่ค่อยดี -> ตอบด้วยความเห็นอกเห็นใจ รับฟังก่อน อย่าเพิ่งแนะนำ"
	toneCelebratory = "\n- อารมณ์ผู้ใช้ดี -> ร่วมยินดี ตอบสนุก มีพลัง"

	emptyMemoryDigest = "ยังไม่มีข้อมูล (เพิ่งรู้จักกัน)"
)

// PersonaStyle returns the style text of a persona, falling back to the first persona
func PersonaStyle(p model.Persona) string {
	return personaStyles[p.OrDefault()]
}

// DayName returns the Thai weekday name of t
func DayName(t time.Time) string {
	return dayNames[(int(t.Weekday())+6)%7]
}

// TimeOfDay buckets the hour: 05-11 morning, 12-16 afternoon, 17-20 evening, otherwise night
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "ตอนเช้า"
	case h >= 12 && h < 17:
		return "ตอนบ่าย"
	case h >= 17 && h < 21:
		return "ตอนเย็น"
	default:
		return "ตอนกลางคืน"
	}
}

func toneHint(uc *model.UserContext) string {
	switch latest := uc.LatestMood(); {
	case latest == 0:
		return ""
	case latest <= 2:
		return toneEmpathetic
	case latest >= 4:
		return toneCelebratory
	default:
		return ""
	}
}

type PromptInput struct {
	Name    string
	Persona model.Persona
	Memory  *model.Memory
	Context *model.UserContext
	Now     time.Time
}

type systemPromptData struct {
	Style        string
	Name         string
	DayName      string
	Clock        string
	TimeOfDay    string
	LiveContext  string
	MemoryDigest string
	ToneHint     string
	Today        string
	Tomorrow     string
}

// BuildSystemPrompt renders the instruction block sent to the model
func BuildSystemPrompt(in PromptInput) (string, error) {
	now := in.Now
	if now.IsZero() {
		now = clock.Now()
	}
	now = now.In(clock.Location)

	data := systemPromptData{
		Style:        PersonaStyle(in.Persona),
		Name:         in.Name,
		DayName:      DayName(now),
		Clock:        now.Format("15:04"),
		TimeOfDay:    TimeOfDay(now),
		LiveContext:  SummarizeContext(in.Context, now),
		MemoryDigest: MemoryDigest(in.Memory),
		ToneHint:     toneHint(in.Context),
		Today:        now.Format(model.DateLayout),
		Tomorrow:     now.AddDate(0, 0, 1).Format(model.DateLayout),
	}

	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt", goerr.V("persona", in.Persona))
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// MemoryDigest renders what is known about the user, one fact per line
func MemoryDigest(m *model.Memory) string {
	if m == nil {
		return emptyMemoryDigest
	}

	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("ชื่อ", m.Name)
	add("อาชีพ", m.Job)
	if len(m.Interests) > 0 {
		add("สนใจ", strings.Join(tail(m.Interests, 5), ", "))
	}
	if len(m.Goals) > 0 {
		add("เป้าหมาย", strings.Join(tail(m.Goals, 3), ", "))
	}
	add("คนสำคัญ", m.Partner)
	add("ครอบครัว", m.FamilyMention)
	add("สุขภาพ", m.HealthMention)
	for _, fact := range tail(m.Facts, 5) {
		lines = append(lines, "- "+fact)
	}
	add("อารมณ์ล่าสุด", m.RecentMood)
	for _, ev := range tail(m.ImportantEvents, 3) {
		lines = append(lines, fmt.Sprintf("- %s: %s", ev.Date, ev.Event))
	}

	if len(lines) == 0 {
		return emptyMemoryDigest
	}
	return strings.Join(lines, "\n")
}
