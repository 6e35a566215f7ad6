// services/imu/service.go
package imu

import (
	"context"
	"errors"
	"time"

	"imupoll-go/bus"
	"imupoll-go/drivers/ak8963"
	"imupoll-go/drivers/mpu9250"
	"imupoll-go/errcode"
	"imupoll-go/x/timex"
)

var topicConfig = bus.T("config", "imu")

func topicValue(kind, id string) bus.Topic { return bus.T("imu", "cap", kind, id, "value") }

func topicCapInfo(kind, id string) bus.Topic { return bus.T("imu", "cap", kind, id, "info") }

func topicState(id string) bus.Topic { return bus.T("imu", "state", id) }

// Service polls an adaptor on a fixed period and publishes its readings.
type Service struct {
	adaptor        Adaptor
	period         time.Duration
	collectTimeout time.Duration

	ticks  uint64
	errs   uint64
	lastEC errcode.Code
}

// NewService creates a polling service. period<=0 selects the 1 Hz default.
func NewService(a Adaptor, period time.Duration) *Service {
	if period <= 0 {
		period = time.Second
	}
	return &Service{
		adaptor:        a,
		period:         period,
		collectTimeout: 250 * time.Millisecond,
		lastEC:         errcode.OK,
	}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.loop(ctx, conn)
	return nil
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	id := s.adaptor.ID()
	for _, ci := range s.adaptor.Capabilities() {
		conn.Publish(bus.NewMessage(topicCapInfo(ci.Kind, id), ci.Info, true))
	}
	s.publishState(conn, "ready")

	tick := time.NewTicker(s.period)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: imu service stopping")
			return
		case <-tick.C:
			s.pollOnce(ctx, conn)
		case msg := <-cfgSub.Channel():
			// Rate changes arrive as {"rate_hz": n}.
			if m, ok := msg.Payload.(map[string]any); ok {
				if rv, ok := m["rate_hz"]; ok {
					if rate, ok := asUint32(rv); ok && rate > 0 {
						s.period = timex.PeriodFromHz(rate)
						tick.Reset(s.period)
					}
				}
			}
		}
	}
}

func (s *Service) pollOnce(ctx context.Context, conn *bus.Connection) {
	cctx, cancel := context.WithTimeout(ctx, s.collectTimeout)
	sample, err := s.adaptor.Collect(cctx)
	cancel()

	// A partial batch (e.g. a mag-side fault after a good main-sensor read)
	// still gets published; only the state reflects the error.
	id := s.adaptor.ID()
	for _, rd := range sample {
		conn.Publish(bus.NewMessage(topicValue(rd.Kind, id), rd.Payload, false))
	}

	if err != nil {
		s.errs++
		s.lastEC = codeOf(err)
		s.publishState(conn, "degraded")
		return
	}
	s.ticks++
	s.lastEC = errcode.OK
	s.publishState(conn, "ready")
}

func (s *Service) publishState(conn *bus.Connection, level string) {
	st := map[string]any{
		"level":  level,
		"ticks":  s.ticks,
		"errors": s.errs,
	}
	if s.lastEC != errcode.OK {
		st["last_error"] = string(s.lastEC)
	}
	if sc, ok := s.adaptor.(SkipCounter); ok {
		nr, of := sc.MagSkips()
		st["mag_not_ready"] = nr
		st["mag_overflow"] = of
	}
	conn.Publish(bus.NewMessage(topicState(s.adaptor.ID()), st, true))
}

// codeOf maps driver and context errors onto stable codes.
func codeOf(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, context.DeadlineExceeded):
		return errcode.Timeout
	case errors.Is(err, ak8963.ErrNotReady):
		return errcode.NotReady
	case errors.Is(err, ak8963.ErrOverflow):
		return errcode.Overflow
	case errors.Is(err, ak8963.ErrBadIdentity), errors.Is(err, mpu9250.ErrBadIdentity):
		return errcode.BadIdentity
	}
	if c := errcode.Of(err); c != errcode.Error {
		return c
	}
	return errcode.ReadFailed
}

func asUint32(v any) (uint32, bool) {
	switch x := v.(type) {
	case int:
		if x > 0 {
			return uint32(x), true
		}
	case uint32:
		return x, true
	case int64:
		if x > 0 {
			return uint32(x), true
		}
	case float64:
		if x > 0 {
			return uint32(x), true
		}
	}
	return 0, false
}
