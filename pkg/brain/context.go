package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/samber/lo"
)

const (
	maxUndoneShown        = 3
	maxTodayReminders     = 2
	maxCriticalAlerts     = 3
	minStreakShown        = 2
	trendLookback         = 3
	defaultMoodLabelScore = 3
)

var moodLabels = map[int]string{
	1: "แย่มาก",
	2: "ไม่ค่อยดี",
	3: "เฉย ๆ",
	4: "ดี",
	5: "ดีมาก",
}

// MoodLabel maps a 1..5 score to its Thai label. Out of range scores read as neutral.
func MoodLabel(score int) string {
	if label, ok := moodLabels[score]; ok {
		return label
	}
	return moodLabels[defaultMoodLabelScore]
}

// SummarizeContext renders the live context as one line per present signal.
// Order: schedule, mood, routines, reminders, streak, breaking alerts.
// It returns "" when nothing is worth reporting.
func SummarizeContext(uc *model.UserContext, now time.Time) string {
	if uc == nil {
		return ""
	}

	var lines []string
	if line := scheduleLine(uc); line != "" {
		lines = append(lines, line)
	}
	if line := moodLine(uc.MoodHistory); line != "" {
		lines = append(lines, line)
	}
	lines = append(lines, routineLines(uc.RoutineStatus)...)
	if line := reminderLine(uc, now); line != "" {
		lines = append(lines, line)
	}
	if uc.Streak >= minStreakShown {
		lines = append(lines, fmt.Sprintf("Streak: %d วันติดต่อกัน (%d points)", uc.Streak, uc.TotalPoints))
	}
	if block := alertBlock(uc.CriticalAlerts, now); block != "" {
		lines = append(lines, block)
	}

	return strings.Join(lines, "\n")
}

func scheduleLine(uc *model.UserContext) string {
	if uc.WakeTime == "" && uc.SleepTime == "" {
		return ""
	}
	wake := lo.Ternary(uc.WakeTime != "", uc.WakeTime, model.DefaultWakeTime)
	sleep := lo.Ternary(uc.SleepTime != "", uc.SleepTime, model.DefaultSleepTime)
	return fmt.Sprintf("ตื่น %s | นอน %s", wake, sleep)
}

// MoodTrend compares the newest score with the one two entries before it.
// It returns "" when there are fewer than three scores or no change.
func MoodTrend(scores []int) string {
	if len(scores) < trendLookback {
		return ""
	}
	latest, past := scores[len(scores)-1], scores[len(scores)-trendLookback]
	switch {
	case latest < past:
		return "แนวโน้มลดลง"
	case latest > past:
		return "แนวโน้มดีขึ้น"
	default:
		return ""
	}
}

func moodLine(moods []*model.Mood) string {
	if len(moods) == 0 {
		return ""
	}
	scores := lo.Map(moods, func(m *model.Mood, _ int) int { return m.Score })
	avg := float64(lo.Sum(scores)) / float64(len(scores))

	trend := ""
	if t := MoodTrend(scores); t != "" {
		trend = " (" + t + ")"
	}

	return fmt.Sprintf("อารมณ์ล่าสุด: %s%s (เฉลี่ย %.1f/5 ใน %d วัน)",
		MoodLabel(scores[len(scores)-1]), trend, avg, len(scores))
}

func routineLines(routines []*model.RoutineStatus) []string {
	if len(routines) == 0 {
		return nil
	}
	done := lo.CountBy(routines, func(r *model.RoutineStatus) bool { return r.Done })
	lines := []string{fmt.Sprintf("กิจวัตรวันนี้: %d/%d เสร็จ", done, len(routines))}

	undone := lo.FilterMap(routines, func(r *model.RoutineStatus, _ int) (string, bool) {
		return r.Title, !r.Done
	})
	if len(undone) > 0 {
		lines = append(lines, "ยังไม่ทำ: "+strings.Join(head(undone, maxUndoneShown), ", "))
	}
	return lines
}

func reminderLine(uc *model.UserContext, now time.Time) string {
	today := uc.RemindersOn(now.Format(model.DateLayout))
	if len(today) > 0 {
		msgs := lo.Map(head(today, maxTodayReminders), func(r *model.Reminder, _ int) string { return r.Message })
		return "นัดวันนี้: " + strings.Join(msgs, ", ")
	}
	if len(uc.PendingReminders) == 0 {
		return ""
	}

	// remind_at is zero padded, so lexical order is chronological
	next := lo.MinBy(uc.PendingReminders, func(a, b *model.Reminder) bool { return a.RemindAt < b.RemindAt })
	return fmt.Sprintf("นัดถัดไป: %s (%s)", next.Message, next.RemindAt)
}

func alertBlock(alerts []*model.Alert, now time.Time) string {
	active := lo.Filter(alerts, func(a *model.Alert, _ int) bool {
		return a.Severity == model.SeverityCritical && a.ActiveAt(now)
	})
	if len(active) == 0 {
		return ""
	}
	lines := lo.Map(head(active, maxCriticalAlerts), func(a *model.Alert, _ int) string {
		return a.Severity.Label() + " " + a.Title
	})
	return "ข่าวด่วน:\n" + strings.Join(lines, "\n")
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
