package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// saver reference-counts screensaver suppression across fullscreen
// windows. The first acquisition saves the current settings and
// disables blanking; the last release restores what was saved.
type saver struct {
	query func() (timeout, interval int16, blanking, exposures byte, err error)
	apply func(timeout, interval int16, blanking, exposures byte)

	count int
	saved bool

	timeout   int16
	interval  int16
	blanking  byte
	exposures byte
}

func newSaver(x *xgb.Conn) saver {
	return saver{
		query: func() (int16, int16, byte, byte, error) {
			reply, err := xproto.GetScreenSaver(x).Reply()
			if err != nil {
				return 0, 0, 0, 0, err
			}
			return int16(reply.Timeout), int16(reply.Interval),
				reply.PreferBlanking, reply.AllowExposures, nil
		},
		apply: func(timeout, interval int16, blanking, exposures byte) {
			xproto.SetScreenSaver(x, timeout, interval, blanking, exposures)
		},
	}
}

func (s *saver) disable() {
	s.count++
	if s.count > 1 {
		return
	}
	t, i, b, e, err := s.query()
	if err == nil {
		s.timeout, s.interval, s.blanking, s.exposures = t, i, b, e
		s.saved = true
	}
	s.apply(0, 0, xproto.BlankingNotPreferred, xproto.ExposuresNotAllowed)
}

func (s *saver) release() {
	if s.count == 0 {
		return
	}
	s.count--
	if s.count == 0 && s.saved {
		s.apply(s.timeout, s.interval, s.blanking, s.exposures)
	}
}

// restore puts the saved settings back regardless of outstanding
// holds. Used at connection teardown.
func (s *saver) restore() {
	if s.count > 0 && s.saved {
		s.apply(s.timeout, s.interval, s.blanking, s.exposures)
	}
	s.count = 0
}
