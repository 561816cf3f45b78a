package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordEvictsOldestAtCapacity(t *testing.T) {
	l := NewLog(2)
	l.Record(Event{Action: "add_access", Filename: "a.txt"})
	l.Record(Event{Action: "add_access", Filename: "b.txt"})
	l.Record(Event{Action: "add_access", Filename: "c.txt"})

	events := l.Recent()
	if assert.Len(t, events, 2) {
		assert.Equal(t, "b.txt", events[0].Filename)
		assert.Equal(t, "c.txt", events[1].Filename)
	}
}

func TestNewLogDefaultsCapacity(t *testing.T) {
	l := NewLog(0)
	assert.Equal(t, DefaultCapacity, l.capacity)
}

func TestRecentReturnsIndependentSnapshot(t *testing.T) {
	l := NewLog(4)
	l.Record(Event{Action: "rem_access", Filename: "a.txt"})

	events := l.Recent()
	events[0].Filename = "mutated"

	fresh := l.Recent()
	assert.Equal(t, "a.txt", fresh[0].Filename)
}
