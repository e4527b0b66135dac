package hairstrand

// Fields carries structured context for a log line (source, offsets, counts).
type Fields map[string]any

// Logger is the leveled logger used by Decode and Loader. Adapters for zap,
// logrus and slog live under log/. Without one, nothing is logged.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
