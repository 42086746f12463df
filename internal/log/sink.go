package log

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// The gateway always logs to stdout so an operator tailing the module sees
// the heartbeat and digest lines, and mirrors everything into a rotating
// file under the configured log directory, standing in for the original
// daily log. fanout writes each line to every destination and reports the
// first sink failure without dropping the line from the others.
type fanout struct {
	sinks []io.Writer
}

func (f *fanout) Write(p []byte) (int, error) {
	var firstErr error
	for _, s := range f.sinks {
		if _, err := s.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

func newSink(cfg *Config) io.Writer {
	sinks := []io.Writer{os.Stdout}
	if cfg.Filename != "" {
		sinks = append(sinks, &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    100, // MB; plenty for a day of debug-level output
			MaxBackups: 7,
			MaxAge:     28, // days
		})
	}
	return &fanout{sinks: sinks}
}
