package brain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fa-friend/fa/pkg/model"
)

var (
	morningGreetings = []string{"อรุณสวัสดิ์", "สวัสดีตอนเช้า", "ตื่นแล้วเหรอ เก่งมาก"}
	nightGreetings   = []string{"สรุปวันนี้ให้นะ", "วันนี้ผ่านไปแล้ว มาดูกันว่าทำอะไรได้บ้าง"}
	encouragements   = []string{"วันนี้จะเป็นวันที่ดีนะ!", "สู้ ๆ นะวันนี้!", "พร้อมลุยวันใหม่กันเลย!", "ทำได้แน่นอน!"}

	moodEmojis = map[int]string{1: "😢", 2: "😔", 3: "😐", 4: "🙂", 5: "😊"}
)

type MorningInput struct {
	Name      string
	Reminders []*model.Reminder
	Routines  []*model.RoutineStatus
	Now       time.Time
}

// MorningBrief builds the start-of-day summary without calling the model
func MorningBrief(in MorningInput, pick Picker) string {
	if pick == nil {
		pick = rand.IntN
	}
	now := in.Now

	lines := []string{
		fmt.Sprintf("☀️ %s %s!", morningGreetings[pick(len(morningGreetings))], in.Name),
		fmt.Sprintf("วัน%sที่ %s", DayName(now), now.Format("02/01/2006")),
		"",
	}

	uc := &model.UserContext{PendingReminders: in.Reminders}
	if today := uc.RemindersOn(now.Format(model.DateLayout)); len(today) > 0 {
		lines = append(lines, "📋 นัดหมายวันนี้:")
		for _, r := range today {
			clockPart := ""
			if _, after, ok := strings.Cut(r.RemindAt, " "); ok {
				clockPart = after
			}
			lines = append(lines, fmt.Sprintf("  • %s %s", clockPart, r.Message))
		}
		lines = append(lines, "")
	}

	if len(in.Routines) > 0 {
		lines = append(lines, "✅ กิจวัตรวันนี้:")
		for _, r := range in.Routines {
			box := "☐"
			if r.Done {
				box = "☑"
			}
			at := ""
			if r.Time != "" {
				at = " (" + r.Time + ")"
			}
			lines = append(lines, fmt.Sprintf("  %s %s%s", box, r.Title, at))
		}
		lines = append(lines, "")
	}

	lines = append(lines, encouragements[pick(len(encouragements))])
	return strings.Join(lines, "\n")
}

type NightInput struct {
	Name          string
	TotalRoutines int
	DoneRoutines  int
	MoodToday     *model.Mood
	Streak        int
}

// NightWrap builds the end-of-day summary without calling the model
func NightWrap(in NightInput, pick Picker) string {
	if pick == nil {
		pick = rand.IntN
	}

	lines := []string{
		fmt.Sprintf("🌙 %s %s~", nightGreetings[pick(len(nightGreetings))], in.Name),
		"",
	}

	if in.TotalRoutines > 0 {
		pct := in.DoneRoutines * 100 / in.TotalRoutines
		lines = append(lines, fmt.Sprintf("📋 กิจวัตร: ทำได้ %d/%d (%d%%)", in.DoneRoutines, in.TotalRoutines, pct))
		switch {
		case pct == 100:
			lines = append(lines, "  🎉 ทำครบหมดเลย! เก่งมาก!")
		case pct >= 50:
			lines = append(lines, "  👍 ทำได้เกินครึ่ง ดีมาก!")
		default:
			lines = append(lines, "  💪 พรุ่งนี้ลองทำให้ได้มากขึ้นนะ!")
		}
	}

	if in.Streak > 0 {
		lines = append(lines, fmt.Sprintf("🔥 Streak: %d วันติดต่อกัน!", in.Streak))
	}

	if in.MoodToday != nil {
		emoji, ok := moodEmojis[in.MoodToday.Score]
		if !ok {
			emoji = moodEmojis[3]
		}
		lines = append(lines, "💭 อารมณ์วันนี้: "+emoji)
	}

	lines = append(lines, "", "ฝันดีนะ~ 🌟")
	return strings.Join(lines, "\n")
}
