package migrate

import "fmt"

type consoleLogger struct {
	prefix  string
	verbose bool
}

func (l *consoleLogger) Printf(format string, v ...any) {
	fmt.Printf(l.prefix+format, v...)
}

func (l *consoleLogger) Verbose() bool {
	return l.verbose
}
