package brain_test

import (
	"testing"

	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestParseModelReply(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want model.ParsedReply
	}{
		{
			name: "all fields",
			raw:  "REPLY: ได้เลย จดไว้ให้แล้ว\nMEMORY_UPDATE: ชอบกาแฟดำ\nREMINDER: 2025-03-01 14:30 ไปหาหมอ",
			want: model.ParsedReply{Reply: "ได้เลย จดไว้ให้แล้ว", MemoryUpdate: "ชอบกาแฟดำ", Reminder: "2025-03-01 14:30 ไปหาหมอ"},
		},
		{
			name: "none sentinels any case",
			raw:  "REPLY: สบายดี\nMEMORY_UPDATE: none\nREMINDER: NONE",
			want: model.ParsedReply{Reply: "สบายดี"},
		},
		{
			name: "missing reply label",
			raw:  "วันนี้ฟ้าว่างนะ\nMEMORY_UPDATE: NONE\nREMINDER: NONE",
			want: model.ParsedReply{Reply: "วันนี้ฟ้าว่างนะ"},
		},
		{
			name: "plain text",
			raw:  "  แค่ข้อความธรรมดา  ",
			want: model.ParsedReply{Reply: "แค่ข้อความธรรมดา"},
		},
		{
			name: "multi line reply",
			raw:  "REPLY: บรรทัดแรก\nบรรทัดสอง\nREMINDER: NONE",
			want: model.ParsedReply{Reply: "บรรทัดแรก\nบรรทัดสอง"},
		},
		{
			name: "empty memory value",
			raw:  "REPLY: ok\nMEMORY_UPDATE:   \nREMINDER: 09:00 ตื่น",
			want: model.ParsedReply{Reply: "ok", Reminder: "09:00 ตื่น"},
		},
		{
			name: "only markers",
			raw:  "MEMORY_UPDATE: x",
			want: model.ParsedReply{MemoryUpdate: "x"},
		},
		{
			name: "empty",
			raw:  "",
			want: model.ParsedReply{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, brain.ParseModelReply(tc.raw), tc.want)
		})
	}
}

func TestParseModelReplyIdempotent(t *testing.T) {
	inputs := []string{
		"REPLY: hi\nMEMORY_UPDATE: เป็นนักศึกษา\nREMINDER: NONE",
		"ไม่มี label\nREMINDER: พรุ่งนี้ 08:00 ประชุม",
		"REPLY: a\nb",
	}
	for _, raw := range inputs {
		first := brain.ParseModelReply(raw)
		second := brain.ParseModelReply(first.String())
		gt.Equal(t, second, first)
	}
}
