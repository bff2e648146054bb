package network

import (
	"fightschool-server/pkg/logger"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type pending struct {
	timer *time.Timer
	gen   uint64
}

// Debouncer держит не больше одного отложенного вызова на ключ.
// Повторный Schedule отменяет предыдущий таймер.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	gen     uint64
	pending map[string]pending
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]pending),
	}
}

// Schedule откладывает fn на окно дебаунса, отменяя прошлый отложенный вызов по ключу
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending[key] = pending{
		gen: gen,
		timer: time.AfterFunc(d.delay, func() {
			d.mu.Lock()
			p, ok := d.pending[key]
			if !ok || p.gen != gen {
				d.mu.Unlock()
				return // перепланирован или отменен
			}
			delete(d.pending, key)
			d.mu.Unlock()

			defer func() {
				if r := recover(); r != nil {
					logger.Log.WithFields(logrus.Fields{
						"component": "debouncer",
						"key":       key,
						"panic":     r,
					}).Error("Debounced callback panicked")
				}
			}()
			fn()
		}),
	}
}

// Cancel снимает отложенный вызов. Возвращает true, если он был.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending - есть ли отложенный вызов по ключу
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
