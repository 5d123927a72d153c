package memory_test

import (
	"fmt"
	"testing"

	"github.com/fa-friend/fa/pkg/memory"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

var now = clock.Must("2025-03-01 10:00")

func TestApplyMemoryUpdateFacts(t *testing.T) {
	m := model.NewMemory("ต้น")
	for range 3 {
		memory.ApplyMemoryUpdate(m, "ชื่อเล่นว่าต้น", now)
	}
	gt.A(t, m.Facts).Length(1)

	for i := range 30 {
		memory.ApplyMemoryUpdate(m, fmt.Sprintf("fact %d", i), now)
	}
	gt.A(t, m.Facts).Length(model.MaxFacts)
	gt.Equal(t, m.Facts[0], "fact 10")
	gt.Equal(t, m.Facts[model.MaxFacts-1], "fact 29")

	// A fact that was evicted can come back
	memory.ApplyMemoryUpdate(m, "fact 0", now)
	gt.Equal(t, m.Facts[model.MaxFacts-1], "fact 0")
}

func TestApplyMemoryUpdateScalars(t *testing.T) {
	m := &model.Memory{}
	memory.ApplyMemoryUpdate(m, "ทำงานเป็นพยาบาล", now)
	gt.Equal(t, m.Job, "ทำงานเป็นพยาบาล")

	memory.ApplyMemoryUpdate(m, "มีแฟนชื่อบอส", now)
	gt.Equal(t, m.Partner, "มีแฟนชื่อบอส")

	memory.ApplyMemoryUpdate(m, "Has a Girlfriend", now)
	gt.Equal(t, m.Partner, "Has a Girlfriend")

	memory.ApplyMemoryUpdate(m, "ช่วงนี้เครียดเรื่องงาน", now)
	gt.Equal(t, m.RecentMood, "เครียด")
	gt.Equal(t, m.Job, "ทำงานเป็นพยาบาล")
}

func TestApplyMemoryUpdateMultipleCategories(t *testing.T) {
	m := &model.Memory{}
	fact := "แม่ป่วยเข้าโรงพยาบาล"
	memory.ApplyMemoryUpdate(m, fact, now)

	gt.Equal(t, m.FamilyMention, fact)
	gt.Equal(t, m.HealthMention, fact)
}

func TestApplyMemoryUpdateLists(t *testing.T) {
	m := &model.Memory{}
	for i := range 12 {
		memory.ApplyMemoryUpdate(m, fmt.Sprintf("ชอบเพลงแนว %d", i), now)
	}
	gt.A(t, m.Interests).Length(model.MaxInterests)
	gt.Equal(t, m.Interests[0], "ชอบเพลงแนว 2")

	for range 2 {
		memory.ApplyMemoryUpdate(m, "ตั้งเป้าวิ่งมาราธอน", now)
	}
	gt.A(t, m.Goals).Length(1)

	for i := range 7 {
		memory.ApplyMemoryUpdate(m, fmt.Sprintf("วางแผนเที่ยว %d", i), now)
	}
	gt.A(t, m.Goals).Length(model.MaxGoals)
}

func TestApplyMemoryUpdateImportantEvents(t *testing.T) {
	t.Run("requires date shape", func(t *testing.T) {
		m := &model.Memory{}
		memory.ApplyMemoryUpdate(m, "มีประชุมบ่อย", now)
		gt.A(t, m.ImportantEvents).Length(0)
	})

	t.Run("relative day word", func(t *testing.T) {
		m := &model.Memory{}
		memory.ApplyMemoryUpdate(m, "พรุ่งนี้มีสอบ", now)
		gt.A(t, m.ImportantEvents).Length(1)
		gt.Equal(t, m.ImportantEvents[0], model.ImportantEvent{Date: "2025-03-01", Event: "พรุ่งนี้มีสอบ"})
	})

	t.Run("numeric date", func(t *testing.T) {
		m := &model.Memory{}
		memory.ApplyMemoryUpdate(m, "วันเกิดแม่ 12/5", now)
		gt.A(t, m.ImportantEvents).Length(1)
		gt.Equal(t, m.FamilyMention, "วันเกิดแม่ 12/5")
	})

	t.Run("capped", func(t *testing.T) {
		m := &model.Memory{}
		for i := range 12 {
			memory.ApplyMemoryUpdate(m, fmt.Sprintf("นัดเพื่อน %d/3", i+1), now)
		}
		gt.A(t, m.ImportantEvents).Length(model.MaxImportantEvents)
		gt.Equal(t, m.ImportantEvents[0].Event, "นัดเพื่อน 3/3")
	})
}

func TestApplyMemoryUpdateNil(t *testing.T) {
	m := memory.ApplyMemoryUpdate(nil, "ชอบแมว", now)
	gt.V(t, m).NotNil()
	gt.A(t, m.Facts).Length(1)
	gt.A(t, m.Interests).Length(1)
}
