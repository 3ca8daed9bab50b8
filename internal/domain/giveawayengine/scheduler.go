package giveawayengine

import (
	"sync"
	"time"

	"github.com/guildify-lab/backend/internal/entity"
)

type fireFunc func(eventID string)

// Scheduler owns the registry of armed one-shot timers, at most one per
// event id. The registry is the only state shared between timer callbacks,
// so its mutex protects arm/disarm only, never the completion pipeline.
type Scheduler struct {
	mutex  sync.Mutex
	timers map[string]*time.Timer
	fire   fireFunc
}

func NewScheduler(fire fireFunc) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Arm installs a timer firing at the event's end time. An already armed
// timer for the same id is stopped and replaced, so re-arming is the normal
// path for both recovery and reschedule. The callback carries only the
// event id; the completion pipeline re-reads the record.
//
// Firing consumes the registry entry before the callback runs. A completion
// that fails leaves the id timer-less, so the reconcile sweep sees the
// active event without a timer and re-arms it.
func (s *Scheduler) Arm(event *entity.GiveawayEvent) {
	delay := time.Until(event.EndTime)
	if delay < 0 {
		delay = 0
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if timer, ok := s.timers[event.ID]; ok {
		timer.Stop()
	}

	eventID := event.ID
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mutex.Lock()
		// A re-arm may have replaced this timer; only consume our own entry.
		if s.timers[eventID] == timer {
			delete(s.timers, eventID)
		}
		s.mutex.Unlock()

		s.fire(eventID)
	})

	s.timers[eventID] = timer
}

func (s *Scheduler) Disarm(eventID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	timer, ok := s.timers[eventID]
	if !ok {
		return false
	}

	timer.Stop()
	delete(s.timers, eventID)
	return true
}

func (s *Scheduler) IsArmed(eventID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.timers[eventID]
	return ok
}

// ArmedIDs returns a snapshot of the armed event ids.
func (s *Scheduler) ArmedIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}

	return ids
}
