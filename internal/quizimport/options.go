package quizimport

import "strings"

// MaxOptionSlots is the number of answer columns scanned per row (A..Z).
// Columns past Z are ignored without an issue.
const MaxOptionSlots = 26

func slotKey(i int) string {
	return string(rune('A' + i))
}

// ExtractSlots reads the answer columns of a row. Slot i always holds letter
// 'A'+i, also when its text is empty, so gaps stay visible.
func ExtractSlots(row RawRow, hm HeaderMap) []Slot {
	slots := make([]Slot, MaxOptionSlots)
	for i := range slots {
		key := slotKey(i)
		v, _ := hm.Pick(row, key, "option"+key)
		slots[i] = Slot{Key: key, Text: strings.TrimSpace(v)}
	}
	return slots
}

// lastFilled returns the highest index with text, or -1.
func lastFilled(slots []Slot) int {
	last := -1
	for i, s := range slots {
		if s.Text != "" {
			last = i
		}
	}
	return last
}
