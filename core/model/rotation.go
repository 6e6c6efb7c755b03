package model

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Assignment is one worked day within a rotation.
type Assignment struct {
	Day  int
	Type ShiftType
}

// Rotation is a maximal block of consecutive working days for one nurse.
// It is the atomic decision variable of the solver. Rotations are built by
// the rotation builder or the pricing oracle and owned by the column pool
// once accepted; they are never mutated afterwards.
type Rotation struct {
	NurseID     string
	Days        []Assignment // ordered, strictly consecutive day indexes
	Hours       float64
	Cost        float64 // base cost plus soft penalties
	Fingerprint uint64
}

// NewRotation assembles a rotation and computes its derived fields. Days
// must already be ordered by day index.
func NewRotation(nurseID string, days []Assignment, cost float64) Rotation {
	r := Rotation{NurseID: nurseID, Days: days, Cost: cost}
	for _, a := range days {
		r.Hours += a.Type.Hours()
	}
	r.Fingerprint = fingerprint(nurseID, days)
	return r
}

// fingerprint hashes the nurse id and the exact day/shift sequence, so two
// rotations collide only when they describe the same assignment.
func fingerprint(nurseID string, days []Assignment) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(nurseID)
	var buf [8]byte
	for _, a := range days {
		binary.LittleEndian.PutUint32(buf[:4], uint32(a.Day))
		binary.LittleEndian.PutUint32(buf[4:], uint32(a.Type))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// FirstDay returns the horizon day index on which the rotation starts.
func (r Rotation) FirstDay() int {
	if len(r.Days) == 0 {
		return -1
	}
	return r.Days[0].Day
}

// LastDay returns the horizon day index on which the rotation ends.
func (r Rotation) LastDay() int {
	if len(r.Days) == 0 {
		return -1
	}
	return r.Days[len(r.Days)-1].Day
}

// Covers reports whether the rotation works the given shift slot.
func (r Rotation) Covers(key ShiftKey) bool {
	for _, a := range r.Days {
		if a.Day == key.Day && a.Type == key.Type {
			return true
		}
	}
	return false
}

// WorksDay reports whether the rotation works any shift on the given day.
func (r Rotation) WorksDay(day int) bool {
	for _, a := range r.Days {
		if a.Day == day {
			return true
		}
	}
	return false
}

// Nights counts night shifts in the rotation.
func (r Rotation) Nights() int {
	n := 0
	for _, a := range r.Days {
		if a.Type == ShiftNight {
			n++
		}
	}
	return n
}

// Less orders rotations by nurse id, then lexicographically by day
// sequence. Used to keep solver output deterministic.
func (r Rotation) Less(o Rotation) bool {
	if r.NurseID != o.NurseID {
		return r.NurseID < o.NurseID
	}
	for i := 0; i < len(r.Days) && i < len(o.Days); i++ {
		if r.Days[i].Day != o.Days[i].Day {
			return r.Days[i].Day < o.Days[i].Day
		}
		if r.Days[i].Type != o.Days[i].Type {
			return r.Days[i].Type < o.Days[i].Type
		}
	}
	return len(r.Days) < len(o.Days)
}

// String renders the rotation as "nurse_001[3:night 4:night]".
func (r Rotation) String() string {
	var b strings.Builder
	b.WriteString(r.NurseID)
	b.WriteByte('[')
	for i, a := range r.Days {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d:%s", a.Day, a.Type)
	}
	b.WriteByte(']')
	return b.String()
}
