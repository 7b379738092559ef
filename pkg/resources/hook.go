package resources

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	otelog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// OtelLogHook forwards every zerolog event to the global OTel logger provider.
// Output to the zerolog writer is unaffected.
type OtelLogHook struct {
	logger otelog.Logger
}

func NewOtelLogHook(scope string, version string) *OtelLogHook {
	return &OtelLogHook{
		logger: global.GetLoggerProvider().Logger(scope, otelog.WithInstrumentationVersion(version)),
	}
}

func (h *OtelLogHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	var rec otelog.Record

	fields := eventFields(e)
	sev, sevText := severityOf(level)

	rec.SetTimestamp(timestampOf(fields))
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(sev)
	rec.SetSeverityText(sevText)
	rec.SetBody(otelog.StringValue(msg))
	rec.AddAttributes(attributesOf(fields)...)

	h.logger.Emit(e.GetCtx(), rec)
}

func severityOf(level zerolog.Level) (otelog.Severity, string) {
	switch level {
	case zerolog.TraceLevel:
		return otelog.SeverityTrace, "TRACE"
	case zerolog.DebugLevel:
		return otelog.SeverityDebug, "DEBUG"
	case zerolog.WarnLevel:
		return otelog.SeverityWarn, "WARN"
	case zerolog.ErrorLevel:
		return otelog.SeverityError, "ERROR"
	case zerolog.FatalLevel:
		return otelog.SeverityFatal, "FATAL"
	case zerolog.PanicLevel:
		return otelog.SeverityFatal4, "PANIC"
	default:
		return otelog.SeverityInfo, "INFO"
	}
}

// eventFields decodes the fields already written to the event. zerolog keeps
// them in an unexported buffer without the closing brace.
func eventFields(e *zerolog.Event) map[string]any {
	if e == nil {
		return nil
	}

	buf := reflect.ValueOf(e).Elem().FieldByName("buf")
	if !buf.IsValid() || buf.Kind() != reflect.Slice || buf.Type().Elem().Kind() != reflect.Uint8 {
		return nil
	}

	raw := append([]byte(nil), buf.Bytes()...)
	if len(raw) == 0 {
		return nil
	}

	if raw[len(raw)-1] != '}' {
		raw = append(raw, '}')
	}

	var fields map[string]any

	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return nil
	}

	return fields
}

func attributesOf(fields map[string]any) []otelog.KeyValue {
	kvs := make([]otelog.KeyValue, 0, len(fields))

	for k, v := range fields {
		if k == zerolog.TimestampFieldName || k == zerolog.LevelFieldName || k == zerolog.MessageFieldName {
			continue
		}

		switch x := v.(type) {
		case string:
			kvs = append(kvs, otelog.String(k, x))
		case bool:
			kvs = append(kvs, otelog.Bool(k, x))
		case float64:
			if x == float64(int64(x)) {
				kvs = append(kvs, otelog.Int64(k, int64(x)))
			} else {
				kvs = append(kvs, otelog.Float64(k, x))
			}
		case nil:
			kvs = append(kvs, otelog.Empty(k))
		default:
			b, _ := json.Marshal(x)
			kvs = append(kvs, otelog.String(k, string(b)))
		}
	}

	return kvs
}

func timestampOf(fields map[string]any) time.Time {
	s, ok := fields[zerolog.TimestampFieldName].(string)
	if !ok {
		return time.Now()
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts
		}
	}

	return time.Now()
}
