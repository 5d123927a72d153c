package brain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

var (
	reminderAbsolute = regexp.MustCompile(`(?s)^(\d{4}-\d{2}-\d{2})\s*[T\s]\s*(\d{1,2}):(\d{2})\s+(.+)`)
	reminderClock    = regexp.MustCompile(`(?s)^(\d{1,2}):(\d{2})\s+(.+)`)
	reminderRelative = regexp.MustCompile(`(?is)^(วันนี้|พรุ่งนี้|tomorrow|today)\s*(\d{1,2}):(\d{2})\s+(.+)`)
)

// NormalizeReminderText turns a reminder fragment into an absolute remind_at.
// Accepted forms, first match wins:
//
//	2025-03-01 14:30 message   (also 2025-03-01T14:30)
//	14:30 message              next occurrence of that time
//	tomorrow 08:00 message     today/tomorrow, Thai or English
//
// Anything else, including impossible dates or times, returns false.
func NormalizeReminderText(text string, now time.Time) (*model.ReminderSpec, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	now = now.In(clock.Location)

	if m := reminderAbsolute.FindStringSubmatch(text); m != nil {
		day, err := time.ParseInLocation(model.DateLayout, m[1], clock.Location)
		if err != nil {
			return nil, false
		}
		return newReminderSpec(day, m[2], m[3], m[4])
	}

	if m := reminderClock.FindStringSubmatch(text); m != nil {
		spec, ok := newReminderSpec(now, m[1], m[2], m[3])
		if !ok {
			return nil, false
		}
		at, _ := time.ParseInLocation(model.ReminderLayout, spec.RemindAt, clock.Location)
		if !at.After(now) {
			spec.RemindAt = at.AddDate(0, 0, 1).Format(model.ReminderLayout)
		}
		return spec, true
	}

	if m := reminderRelative.FindStringSubmatch(text); m != nil {
		day := now
		switch strings.ToLower(m[1]) {
		case "พรุ่งนี้", "tomorrow":
			day = now.AddDate(0, 0, 1)
		}
		return newReminderSpec(day, m[2], m[3], m[4])
	}

	return nil, false
}

func newReminderSpec(day time.Time, hour, minute, message string) (*model.ReminderSpec, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h > 23 {
		return nil, false
	}
	mi, err := strconv.Atoi(minute)
	if err != nil || mi > 59 {
		return nil, false
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, false
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), h, mi, 0, 0, clock.Location)
	return &model.ReminderSpec{
		RemindAt: at.Format(model.ReminderLayout),
		Message:  message,
	}, true
}

// ParseRemindAt parses a stored remind_at value in the local zone
func ParseRemindAt(s string) (time.Time, error) {
	t, err := time.ParseInLocation(model.ReminderLayout, s, clock.Location)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid remind_at", goerr.V("remind_at", s))
	}
	return t, nil
}
