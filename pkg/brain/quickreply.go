package brain

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
)

// maxLocalReplyRunes guards against substring hits inside long sentences
const maxLocalReplyRunes = 40

type replyCategory struct {
	name     string
	triggers []string
	replies  []string
}

const (
	categoryBored       = "bored"
	categoryGoodMorning = "goodmorning"
	categoryGoodNight   = "goodnight"
)

// Order matters: categories overlap and the first hit wins.
var quickReplies = []replyCategory{
	{
		name:     "greetings",
		triggers: []string{"สวัสดี", "หวัดดี", "ดีจ้า", "ดีครับ", "ดีค่ะ", "hi", "hello", "hey"},
		replies: []string{
			"หวัดดี {name}~ วันนี้เป็นไงบ้าง? 😊",
			"มาแล้ว! {name} สบายดีมั้ย?",
			"ดีจ้า {name}~ มีอะไรเล่าให้ฟังมั้ย?",
			"โย่ {name}! วันนี้ทำอะไรอยู่เอ่ย?",
		},
	},
	{
		name:     "thanks",
		triggers: []string{"ขอบคุณ", "ขอบใจ", "thank", "thanks"},
		replies: []string{
			"ไม่เป็นไร~ เพื่อนกันนี่นา 😄",
			"ยินดีเสมอ {name}! 💕",
			"เรื่องเล็ก ๆ ไม่ต้องขอบคุณหรอก~",
		},
	},
	{
		name:     categoryGoodNight,
		triggers: []string{"ราตรีสวัสดิ์", "ฝันดี", "นอนแล้ว", "นอนก่อน", "good night"},
		replies: []string{
			"ฝันดีนะ {name} 🌙 พรุ่งนี้เจอกัน!",
			"ราตรีสวัสดิ์~ นอนหลับให้สบายเลยนะ ✨",
			"ไปพักผ่อนเลย {name} เดี๋ยวเช้ามาคุยกันใหม่ 😴",
		},
	},
	{
		name:     categoryGoodMorning,
		triggers: []string{"อรุณสวัสดิ์", "ตื่นแล้ว", "good morning"},
		replies: []string{
			"อรุณสวัสดิ์ {name}~ ☀️ วันนี้จะเป็นวันที่ดีนะ!",
			"ตื่นแล้วเหรอ! เก่งมาก {name} 💪",
			"เช้าแล้ว~ {name} กินข้าวเช้าด้วยนะ 🍳",
		},
	},
	{
		name:     "how_are_you",
		triggers: []string{"เป็นไง", "สบายดีมั้ย", "ทำอะไรอยู่"},
		replies: []string{
			"ฟ้าสบายดี~ รอ {name} ทักมาอยู่เลย 😊",
			"ดีจ้า! {name} ล่ะ เป็นไงบ้าง?",
		},
	},
	{
		name:     "tired",
		triggers: []string{"เหนื่อย", "ล้า", "ไม่ไหวแล้ว", "หมดแรง", "อ่อนเพลีย"},
		replies: []string{
			"เหนื่อยก็พักก่อนนะ {name} 🥺 ร่างกายสำคัญ",
			"อย่าฝืนมากเกินไปนะ {name}~ หายใจลึก ๆ ก่อน",
			"รู้สึกอย่างนั้นได้เลย เหนื่อยก็บอกได้นะ 💕",
		},
	},
	{
		name:     "stressed",
		triggers: []string{"เครียด", "กดดัน", "stress", "เครียดมาก"},
		replies: []string{
			"เครียดมั้ยเนี่ย... {name} หายใจลึก ๆ ก่อนนะ 🌬️",
			"เครียดเหรอ~ อยากเล่าให้ฟังมั้ย? ฟ้าอยู่ตรงนี้",
			"เข้าใจเลย เครียดแบบนี้ไม่ง่ายเลย ฟ้าฟังอยู่นะ 😔",
		},
	},
	{
		name:     "sad",
		triggers: []string{"เศร้า", "ร้องไห้", "ใจหาย", "เสียใจ", "หดหู่", "เหงา"},
		replies: []string{
			"เศร้าเหรอ {name}... อยากคุยก็บอกนะ ฟ้าฟังอยู่ 💙",
			"ไม่เป็นไรนะ {name} ฟ้าอยู่ตรงนี้เสมอ",
			"ให้กำลังใจ {name} นะ เดี๋ยวทุกอย่างจะดีขึ้น 🤍",
		},
	},
	{
		name:     "happy",
		triggers: []string{"ดีใจ", "มีความสุข", "เย้", "สนุก", "เฮ", "ยินดี"},
		replies: []string{
			"ดีใจด้วย {name}! 🎉 เล่าให้ฟังได้เลยนะ",
			"โอ้ว {name} ดีใจมากเลย! เกิดอะไรขึ้น? 😊",
			"เย้ {name}! พลังงานบวกมาก~ ✨",
		},
	},
	{
		name:     "eating",
		triggers: []string{"กินข้าว", "กินอะไร", "อิ่มแล้ว", "หิว", "กินมาแล้ว"},
		replies: []string{
			"กินให้อิ่มด้วยนะ {name}~ ☺️",
			"กินอร่อยมั้ย {name}? อย่าลืมกินผักด้วยนะ 🥦",
			"หิวเหรอ? รีบไปกินเลย {name}~ 🍚",
		},
	},
	{
		name:     categoryBored,
		triggers: []string{"เบื่อ", "ว่างมาก", "ไม่รู้จะทำอะไร", "น่าเบื่อ"},
		replies: []string{
			"เบื่อเหรอ {name}~ มาคุยกันได้เลย 😄",
			"ว่างงั้นเหรอ! มีกิจวัตรที่ยังทำไม่ได้มั้ยนะ? 📋",
			"เบื่อก็มาเล่าเรื่องให้ฟังสิ {name}~ ฟ้าสนใจ",
		},
	},
}

// Picker returns an index in [0, n)
type Picker func(n int) int

// Matcher answers short messages from canned templates so that common
// greetings and moods never cost a model call.
type Matcher struct {
	pick  Picker
	clock clock.Clock
}

type MatcherOption func(*Matcher)

// WithRand pins the random source used to choose a template
func WithRand(r *rand.Rand) MatcherOption {
	var mu sync.Mutex
	return func(m *Matcher) {
		m.pick = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return r.IntN(n)
		}
	}
}

// WithPicker replaces template selection entirely
func WithPicker(p Picker) MatcherOption {
	return func(m *Matcher) {
		m.pick = p
	}
}

// WithClock sets the clock used to find today's reminders
func WithClock(c clock.Clock) MatcherOption {
	return func(m *Matcher) {
		m.clock = c
	}
}

func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		pick:  rand.IntN,
		clock: clock.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Category returns the name of the first category triggered by msg, or "" when
// none is. Messages of 40 runes or more never match.
func Category(msg string) string {
	c := matchCategory(msg)
	if c == nil {
		return ""
	}
	return c.name
}

func matchCategory(msg string) *replyCategory {
	lowered := strings.ToLower(strings.TrimSpace(msg))
	if utf8.RuneCountInString(lowered) >= maxLocalReplyRunes {
		return nil
	}
	for i := range quickReplies {
		for _, trigger := range quickReplies[i].triggers {
			if strings.Contains(lowered, trigger) {
				return &quickReplies[i]
			}
		}
	}
	return nil
}

// TryLocalReply returns a templated reply and true when msg matches a
// category. Context only changes the wording, never whether a match happens.
func (m *Matcher) TryLocalReply(msg, name string, uc *model.UserContext) (string, bool) {
	category := matchCategory(msg)
	if category == nil {
		return "", false
	}

	reply := strings.ReplaceAll(category.replies[m.pick(len(category.replies))], "{name}", name)
	if uc == nil {
		return reply, true
	}

	switch category.name {
	case categoryBored:
		if undone := uc.Undone(); len(undone) > 0 {
			reply = "เบื่อเหรอ " + name + "~ ยังมี '" + undone[0] + "' ที่ยังไม่ได้ทำนะ! 📋"
		}
	case categoryGoodMorning:
		today := m.clock().In(clock.Location).Format(model.DateLayout)
		if rem := uc.RemindersOn(today); len(rem) > 0 {
			reply += " วันนี้มีนัด: " + rem[0].Message + " ด้วยนะ! 📅"
		}
	case categoryGoodNight:
		if uc.Streak >= 3 {
			reply += " (Streak " + strconv.Itoa(uc.Streak) + " วันแล้ว! เก่งมาก 🔥)"
		}
	}

	return reply, true
}
