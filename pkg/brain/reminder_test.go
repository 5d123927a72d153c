package brain_test

import (
	"testing"
	"time"

	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

func TestNormalizeReminderText(t *testing.T) {
	testCases := []struct {
		name string
		text string
		now  string
		want *model.ReminderSpec
	}{
		{
			name: "absolute",
			text: "2025-03-01 14:30 ไปหาหมอ",
			now:  "2024-12-31 23:59",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 14:30", Message: "ไปหาหมอ"},
		},
		{
			name: "absolute with T separator and short hour",
			text: "2025-03-01T9:05 กินยา",
			now:  "2025-03-01 08:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 09:05", Message: "กินยา"},
		},
		{
			name: "clock already passed rolls to tomorrow",
			text: "14:30 กินยา",
			now:  "2025-03-01 15:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-02 14:30", Message: "กินยา"},
		},
		{
			name: "clock equal to now rolls to tomorrow",
			text: "15:00 กินยา",
			now:  "2025-03-01 15:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-02 15:00", Message: "กินยา"},
		},
		{
			name: "clock later today",
			text: "18:00 วิ่ง",
			now:  "2025-03-01 15:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 18:00", Message: "วิ่ง"},
		},
		{
			name: "clock rolls across month end",
			text: "06:00 ตื่น",
			now:  "2025-02-28 22:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 06:00", Message: "ตื่น"},
		},
		{
			name: "tomorrow english",
			text: "tomorrow 08:00 ประชุม",
			now:  "2025-03-01 09:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-02 08:00", Message: "ประชุม"},
		},
		{
			name: "Tomorrow is case insensitive",
			text: "Tomorrow 08:00 ประชุม",
			now:  "2025-03-01 09:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-02 08:00", Message: "ประชุม"},
		},
		{
			name: "thai tomorrow without space",
			text: "พรุ่งนี้08:00 สอบ",
			now:  "2025-03-01 09:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-02 08:00", Message: "สอบ"},
		},
		{
			name: "today keeps the date even if passed",
			text: "วันนี้ 07:00 ยืดเส้น",
			now:  "2025-03-01 09:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 07:00", Message: "ยืดเส้น"},
		},
		{
			name: "message spans lines",
			text: "2025-03-01 14:30 ไปหาหมอ\nเอาบัตรไปด้วย",
			now:  "2025-03-01 08:00",
			want: &model.ReminderSpec{RemindAt: "2025-03-01 14:30", Message: "ไปหาหมอ\nเอาบัตรไปด้วย"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := brain.NormalizeReminderText(tc.text, clock.Must(tc.now))
			gt.True(t, ok)
			gt.Equal(t, got, tc.want)
		})
	}
}

func TestNormalizeReminderTextAbsent(t *testing.T) {
	now := clock.Must("2025-03-01 09:00")
	inputs := []string{
		"",
		"   ",
		"ไปหาหมอบ่ายสาม",
		"(วันพรุ่งนี้ YYYY-MM-DD) 08:00 ประชุม",
		"2025-13-01 10:00 เดือนผิด",
		"2025-02-30 10:00 วันผิด",
		"25:00 เวลาผิด",
		"10:75 นาทีผิด",
		"14:30",
		"next week 10:00 x",
	}
	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			got, ok := brain.NormalizeReminderText(text, now)
			gt.False(t, ok)
			gt.Nil(t, got)
		})
	}
}

func TestNormalizeReminderTextSecondsTruncated(t *testing.T) {
	now := clock.Must("2025-03-01 14:30").Add(20 * time.Second)
	got, ok := brain.NormalizeReminderText("14:30 x", now)
	gt.True(t, ok)
	gt.Equal(t, got.RemindAt, "2025-03-02 14:30")

	at, err := brain.ParseRemindAt(got.RemindAt)
	gt.NoError(t, err)
	gt.Equal(t, at.Second(), 0)
}
