package pano

import (
	"fmt"
	"log"
	"time"
)

// frameStats accumulates per-tick metrics between debug log lines. Only
// populated when Config.Debug is true.
type frameStats struct {
	ticks          int
	updateTime     time.Duration
	visibleMarkers int
}

func newSessionLogger(cfg *Config) *log.Logger {
	return log.New(cfg.logOutput(), "[pano] ", log.LstdFlags|log.Lmicroseconds)
}

// logf writes a session log line regardless of debug mode.
func (s *Session) logf(format string, args ...any) {
	s.log.Printf("session %s: %s", s.id, fmt.Sprintf(format, args...))
}

// debugf writes a session log line only in debug mode.
func (s *Session) debugf(format string, args ...any) {
	if !s.cfg.Debug {
		return
	}
	s.logf(format, args...)
}

// debugLog prints the statistics gathered since the previous line.
func (s *Session) debugLog(stats frameStats) {
	if !s.cfg.Debug || stats.ticks == 0 {
		return
	}
	avg := stats.updateTime / time.Duration(stats.ticks)
	pending := "none"
	if s.pending != nil {
		pending = s.pending.Source()
	}
	s.logf("ticks: %d | update avg: %v | markers drawn: %d | pending: %s | cached: %d",
		stats.ticks, avg, stats.visibleMarkers, pending, s.loader.Len())
}
