// Package memory folds free-text facts learned in conversation into the
// structured per-user memory record.
package memory

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
)

var (
	jobKeywords = []string{
		"ทำงาน", "อาชีพ", "เป็นพนักงาน", "ทำเป็น",
		"นักเรียน", "นักศึกษา", "เรียนอยู่", "เรียนที่",
		"ทำธุรกิจ", "เปิดร้าน", "ฟรีแลนซ์",
	}

	// Every mood keyword is also its own label
	moodKeywords = []string{
		"เครียด", "เหนื่อย", "เศร้า", "ดีใจ", "มีความสุข", "สนุก", "กังวล",
		"โกรธ", "เบื่อ", "ตื่นเต้น", "หดหู่", "โดดเดี่ยว", "หงุดหงิด",
	}

	partnerKeywords = []string{"แฟน", "สามี", "ภรรยา", "คนรัก", "boyfriend", "girlfriend"}

	interestKeywords = []string{
		"ชอบ", "สนใจ", "หลงใหล", "โปรด", "ติดตาม",
		"เล่น", "ดู", "ฟัง", "อ่าน", "งานอดิเรก",
	}

	goalKeywords = []string{
		"อยากได้", "ตั้งใจ", "เป้าหมาย", "ฝัน", "อยากเป็น",
		"อยากทำ", "วางแผน", "อยากลอง", "ตั้งเป้า",
	}

	familyKeywords = []string{"แม่", "พ่อ", "น้อง", "พี่", "ลูก", "ปู่", "ย่า", "ตา", "ยาย", "พี่น้อง"}

	healthKeywords = []string{
		"ป่วย", "หมอ", "โรงพยาบาล", "ยา", "ออกกำลัง",
		"อาหาร", "นอนไม่หลับ", "ปวด", "แพ้", "ไข้",
	}

	eventKeywords = []string{"นัด", "ประชุม", "สอบ", "เดินทาง", "วันเกิด", "งานแต่ง", "สัมภาษณ์"}

	// RE2 word boundaries are ASCII only, so Thai day words match as substrings
	eventDateShape = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}|พรุ่งนี้|วันนี้|สัปดาห์หน้า|เดือนหน้า`)
)

// ApplyMemoryUpdate records fact in m and extracts structured fields from it.
// Each category is scanned independently so one fact can fill several fields.
// m is modified in place and returned for convenience.
func ApplyMemoryUpdate(m *model.Memory, fact string, now time.Time) *model.Memory {
	if m == nil {
		m = &model.Memory{}
	}
	if fact == "" {
		return m
	}

	if !slices.Contains(m.Facts, fact) {
		m.Facts = append(m.Facts, fact)
	}
	m.Facts = keepLast(m.Facts, model.MaxFacts)

	lowered := strings.ToLower(fact)

	if containsAny(lowered, jobKeywords) != "" {
		m.Job = fact
	}
	if mood := containsAny(lowered, moodKeywords); mood != "" {
		m.RecentMood = mood
	}
	if containsAny(lowered, partnerKeywords) != "" {
		m.Partner = fact
	}
	if containsAny(lowered, interestKeywords) != "" {
		m.Interests = appendUnique(m.Interests, fact, model.MaxInterests)
	}
	if containsAny(lowered, goalKeywords) != "" {
		m.Goals = appendUnique(m.Goals, fact, model.MaxGoals)
	}
	if containsAny(lowered, familyKeywords) != "" {
		m.FamilyMention = fact
	}
	if containsAny(lowered, healthKeywords) != "" {
		m.HealthMention = fact
	}
	if containsAny(lowered, eventKeywords) != "" && eventDateShape.MatchString(lowered) {
		m.ImportantEvents = append(m.ImportantEvents, model.ImportantEvent{
			Date:  now.In(clock.Location).Format(model.DateLayout),
			Event: fact,
		})
		m.ImportantEvents = keepLast(m.ImportantEvents, model.MaxImportantEvents)
	}

	return m
}

// containsAny returns the first keyword found in s, or ""
func containsAny(s string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return kw
		}
	}
	return ""
}

func appendUnique(list []string, v string, max int) []string {
	if slices.Contains(list, v) {
		return list
	}
	return keepLast(append(list, v), max)
}

func keepLast[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return slices.Clone(s[len(s)-n:])
}
