// Package queue keeps the staff view of the walk-in queue in step with
// check-in, seen and delete events.
package queue

import (
	"sync"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/db"
)

// EventType names the kind of change made to a queue entry.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is a single change to the patient queue.
type Event struct {
	Type    EventType  `json:"type"`
	Patient db.Patient `json:"patient"`
}

// Board is the list of patients still waiting, newest arrivals first once
// events start flowing. It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	patients []db.Patient
}

// NewBoard seeds the board with the waiting list as loaded from the database.
func NewBoard(waiting []db.Patient) *Board {
	b := &Board{}
	b.Reset(waiting)
	return b
}

// Reset replaces the board contents, e.g. after a manual refresh.
func (b *Board) Reset(waiting []db.Patient) {
	next := make([]db.Patient, 0, len(waiting))
	for _, p := range waiting {
		if !p.IsSeen {
			next = append(next, p)
		}
	}
	b.mu.Lock()
	b.patients = next
	b.mu.Unlock()
}

// Apply folds one event into the board:
// an unseen insert goes to the front, an update to seen removes the patient,
// and a delete removes the patient.
func (b *Board) Apply(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.Type {
	case EventInsert:
		if ev.Patient.IsSeen || b.indexOf(ev.Patient.ID) >= 0 {
			return
		}
		b.patients = append([]db.Patient{ev.Patient}, b.patients...)
	case EventUpdate:
		if ev.Patient.IsSeen {
			b.remove(ev.Patient.ID)
		}
	case EventDelete:
		b.remove(ev.Patient.ID)
	}
}

// Remove drops a patient locally ahead of the store confirming the change.
func (b *Board) Remove(id uuid.UUID) {
	b.mu.Lock()
	b.remove(id)
	b.mu.Unlock()
}

// Patients returns a copy of the waiting list.
func (b *Board) Patients() []db.Patient {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]db.Patient, len(b.patients))
	copy(out, b.patients)
	return out
}

// Len is the number of waiting patients.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.patients)
}

func (b *Board) remove(id uuid.UUID) {
	if i := b.indexOf(id); i >= 0 {
		b.patients = append(b.patients[:i:i], b.patients[i+1:]...)
	}
}

func (b *Board) indexOf(id uuid.UUID) int {
	for i, p := range b.patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}
