package simulator

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logWriter routes echo's access log lines into logrus at info level.
func logWriter(log logrus.FieldLogger) io.Writer {
	if l, ok := log.(*logrus.Entry); ok {
		return l.WriterLevel(logrus.InfoLevel)
	}
	if l, ok := log.(*logrus.Logger); ok {
		return l.WriterLevel(logrus.InfoLevel)
	}
	return io.Discard
}
