package engine

import (
	"time"

	"github.com/sirupsen/logrus"
)

type timerKind uint8

const (
	timerDeadline timerKind = iota // конец фазы (дедлайн или пауза показа)
	timerTick                      // опрос готовности в abilities
)

func (k timerKind) String() string {
	if k == timerTick {
		return "tick"
	}
	return "deadline"
}

type timerEvent struct {
	kind timerKind
	gen  uint64
}

// phaseTimers - не больше одного дедлайна и одного тика одновременно.
// Трогается только из горутины актора.
type phaseTimers struct {
	gen      uint64
	deadline *time.Timer
	tick     *time.Timer
}

// cancelTimers останавливает таймеры фазы и меняет поколение,
// так что уже сработавшие, но не обработанные события отбросятся.
func (i *Instance) cancelTimers() {
	i.timers.gen++
	if i.timers.deadline != nil {
		i.timers.deadline.Stop()
		i.timers.deadline = nil
	}
	if i.timers.tick != nil {
		i.timers.tick.Stop()
		i.timers.tick = nil
	}
}

func (i *Instance) armDeadline(d time.Duration) {
	if i.timers.deadline != nil {
		i.timers.deadline.Stop()
	}
	gen := i.timers.gen
	i.timers.deadline = time.AfterFunc(d, func() {
		i.fire(timerEvent{kind: timerDeadline, gen: gen})
	})
}

func (i *Instance) armTick() {
	if i.timers.tick != nil {
		i.timers.tick.Stop()
	}
	gen := i.timers.gen
	var poll func()
	poll = func() {
		// Опрос не реентерабелен: пока прошлый в очереди актора, новый откладывается.
		// Повтор не хранится в phaseTimers, устаревший отбросится по поколению.
		if !i.polling.CompareAndSwap(false, true) {
			if !i.stopped() {
				time.AfterFunc(i.timings.Unit, poll)
			}
			return
		}
		i.fire(timerEvent{kind: timerTick, gen: gen})
	}
	i.timers.tick = time.AfterFunc(i.timings.Unit, poll)
}

// fire выполняется в горутине таймера и передает событие актору
func (i *Instance) fire(ev timerEvent) {
	defer func() {
		if r := recover(); r != nil {
			i.log.WithFields(logrus.Fields{
				"timer": ev.kind.String(),
				"panic": r,
			}).Error("Timer callback panicked")
		}
	}()

	select {
	case i.timerChan <- ev:
	case <-i.quit:
		if ev.kind == timerTick {
			i.polling.Store(false)
		}
	}
}
