//go:build !windows

package logging

import (
	"io"
	"log/syslog"
)

func newSyslogSink(tag string) io.Writer {
	if tag == "" {
		return nil
	}
	writer, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil
	}
	return writer
}
