package audit

import "go.uber.org/zap"

// LogWriter is the fallback EventWriter for deployments without ClickHouse:
// it logs each event as structured fields through zap.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter builds a LogWriter over logger.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *Event) {
	w.logger.Info("redaction_event",
		zap.String("request_id", event.RequestID),
		zap.String("engine_version", event.EngineVersion),
		zap.String("trust", string(event.Trust)),
		zap.Int("hit_count", event.HitCount),
		zap.Strings("detector_ids", event.DetectorIDs),
		zap.Float32("latency_ms", event.LatencyMs),
		zap.String("source", event.Source),
		zap.String("text_hash", event.TextHash),
	)
}

func (w *LogWriter) Close() {}
