// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/wavecycle/wavecycle/audio"
)

// minAuxInterval keeps auxiliary tasks on a strictly coarser tick than the
// audio tasks' per chunk suspension, so they never contend with sample
// deadlines.
const minAuxInterval = 10 * time.Millisecond

// Deck coordinates the capture and playback pipelines plus any auxiliary
// background tasks. It owns the single completion signal sequencing
// playback after capture and hands it to both pipelines at creation. There
// is no other shared mutable state between the tasks.
type Deck struct {
	conf     Config
	recorded *Event
	pool     *audio.BufferPool
	capture  *Capture
	playback *Playback
	aux      []auxTask

	log     zerolog.Logger
	metrics *Metrics
}

type auxTask struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
}

type DeckOption func(d *Deck)

func WithLogger(log zerolog.Logger) DeckOption {
	return func(d *Deck) {
		d.log = log
	}
}

// WithMetricsRegistry registers pipeline metrics on reg instead of an
// isolated registry.
func WithMetricsRegistry(reg prometheus.Registerer) DeckOption {
	return func(d *Deck) {
		d.metrics = NewMetrics(reg)
	}
}

// WithAuxiliaryTask schedules fn on its own coarse ticker beside the audio
// tasks. Intervals below 10ms are clamped up.
func WithAuxiliaryTask(name string, interval time.Duration, fn func(ctx context.Context)) DeckOption {
	return func(d *Deck) {
		if interval < minAuxInterval {
			interval = minAuxInterval
		}
		d.aux = append(d.aux, auxTask{name: name, interval: interval, fn: fn})
	}
}

func NewDeck(conf Config, source Source, sink Sink, storage Storage, opts ...DeckOption) (*Deck, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	pool, err := audio.NewBufferPool(conf.BufferSize)
	if err != nil {
		return nil, err
	}

	d := &Deck{
		conf:     conf,
		recorded: NewEvent(),
		pool:     pool,
		log:      zerolog.Nop(),
		metrics:  NewMetrics(nil),
	}
	for _, o := range opts {
		o(d)
	}

	d.capture = NewCapture(conf, source, storage, pool.Capture(), d.recorded)
	d.capture.Log = d.log
	d.capture.Metrics = d.metrics

	d.playback = NewPlayback(conf, sink, storage, pool.Playback(), d.recorded)
	d.playback.Log = d.log
	d.playback.Metrics = d.metrics

	return d, nil
}

func (d *Deck) Capture() *Capture {
	return d.capture
}

func (d *Deck) Playback() *Playback {
	return d.playback
}

// Recorded is the completion signal fired when capture finalizes.
func (d *Deck) Recorded() *Event {
	return d.recorded
}

// Run records then plays back, with auxiliary tasks ticking alongside.
// It returns when both pipelines stopped, normally on cancellation since
// playback loops forever. A failure in one pipeline does not tear down its
// sibling, errors are contained at each pipeline's boundary and reported
// joined after both finish. Interrupts are not reported as errors.
func (d *Deck) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var capErr, playErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		capErr = d.capture.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		playErr = d.playback.Run(ctx)
	}()

	for _, t := range d.aux {
		wg.Add(1)
		go func(t auxTask) {
			defer wg.Done()
			d.runAux(ctx, t)
		}(t)
	}

	wg.Wait()

	if IsUserInterrupt(capErr) {
		capErr = nil
	}
	if IsUserInterrupt(playErr) {
		playErr = nil
	}
	return errors.Join(capErr, playErr)
}

func (d *Deck) runAux(ctx context.Context, t auxTask) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	d.log.Debug().Str("task", t.name).Dur("interval", t.interval).Msg("Auxiliary task started")
	for {
		select {
		case <-ctx.Done():
			d.log.Debug().Str("task", t.name).Msg("Auxiliary task stopped")
			return
		case <-ticker.C:
			t.fn(ctx)
		}
	}
}
