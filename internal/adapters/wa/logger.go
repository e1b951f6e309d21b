package wa

import (
	"fmt"
	"log/slog"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// slogLogger пробрасывает логи whatsmeow в общий slog
type slogLogger struct {
	base   *slog.Logger
	module string
}

func NewLogger(l *slog.Logger) waLog.Logger {
	return &slogLogger{base: l, module: "whatsmeow"}
}

func (s *slogLogger) Errorf(msg string, args ...interface{}) {
	s.base.Error(fmt.Sprintf(msg, args...), "module", s.module)
}

func (s *slogLogger) Warnf(msg string, args ...interface{}) {
	s.base.Warn(fmt.Sprintf(msg, args...), "module", s.module)
}

func (s *slogLogger) Infof(msg string, args ...interface{}) {
	s.base.Info(fmt.Sprintf(msg, args...), "module", s.module)
}

func (s *slogLogger) Debugf(msg string, args ...interface{}) {
	s.base.Debug(fmt.Sprintf(msg, args...), "module", s.module)
}

func (s *slogLogger) Sub(module string) waLog.Logger {
	return &slogLogger{base: s.base, module: s.module + "/" + module}
}
