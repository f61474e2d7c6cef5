package logging

// NoopLogger discards everything. Used in tests and as a safe default.
type NoopLogger struct{}

var _ Logger = (*NoopLogger)(nil)

func NewNoopLogger() Logger { return &NoopLogger{} }

func (l *NoopLogger) Debug(msg string, tags ...interface{}) {}
func (l *NoopLogger) Info(msg string, tags ...interface{})  {}
func (l *NoopLogger) Warn(msg string, tags ...interface{})  {}
func (l *NoopLogger) Error(msg string, tags ...interface{}) {}
func (l *NoopLogger) Fatal(msg string, tags ...interface{}) {}

func (l *NoopLogger) Debugf(template string, args ...interface{}) {}
func (l *NoopLogger) Infof(template string, args ...interface{})  {}
func (l *NoopLogger) Warnf(template string, args ...interface{})  {}
func (l *NoopLogger) Errorf(template string, args ...interface{}) {}
func (l *NoopLogger) Fatalf(template string, args ...interface{}) {}

func (l *NoopLogger) With(tags ...interface{}) Logger { return l }
