package model

// UserContext is the live state assembled for a single chat turn. It is never
// persisted as a unit. MoodHistory is ordered oldest to newest and
// RoutineStatus covers the current day only.
type UserContext struct {
	WakeTime         string
	SleepTime        string
	MoodHistory      []*Mood
	RoutineStatus    []*RoutineStatus
	PendingReminders []*Reminder
	Streak           int
	TotalPoints      int
	CriticalAlerts   []*Alert
}

// LatestMood returns the newest mood score, or 0 when there is none
func (c *UserContext) LatestMood() int {
	if c == nil || len(c.MoodHistory) == 0 {
		return 0
	}
	return c.MoodHistory[len(c.MoodHistory)-1].Score
}

// Undone returns titles of routines not yet completed today
func (c *UserContext) Undone() []string {
	if c == nil {
		return nil
	}
	var titles []string
	for _, r := range c.RoutineStatus {
		if !r.Done {
			titles = append(titles, r.Title)
		}
	}
	return titles
}

// RemindersOn returns pending reminders whose remind_at falls on the given date (YYYY-MM-DD)
func (c *UserContext) RemindersOn(date string) []*Reminder {
	if c == nil {
		return nil
	}
	var out []*Reminder
	for _, r := range c.PendingReminders {
		if len(r.RemindAt) >= len(date) && r.RemindAt[:len(date)] == date {
			out = append(out, r)
		}
	}
	return out
}
