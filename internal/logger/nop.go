package logger

// NoOpLogger discards everything. Used in tests and when logging is disabled.
type NoOpLogger struct{}

// NewNop returns a logger that discards all output
func NewNop() Logger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) Debug(string, ...Field) {}
func (n *NoOpLogger) Info(string, ...Field)  {}
func (n *NoOpLogger) Warn(string, ...Field)  {}
func (n *NoOpLogger) Error(string, ...Field) {}
func (n *NoOpLogger) With(...Field) Logger   { return n }
func (n *NoOpLogger) Sync() error            { return nil }
