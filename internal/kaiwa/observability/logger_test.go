package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/bdobrica/Kaiwa/common/trace"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/observability"
)

func TestWithTrace_AttachesTraceID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := trace.WithTraceID(context.Background(), "t_deadbeef")

	observability.WithTrace(ctx, base).Info("matched")

	line := buf.String()
	if !strings.Contains(line, `"trace_id":"t_deadbeef"`) {
		t.Errorf("log line missing trace_id: %s", line)
	}
}

func TestWithTrace_NoTraceID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	observability.WithTrace(context.Background(), base).Info("matched")

	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("log line has trace_id without one in context: %s", buf.String())
	}
}

func TestWithTrace_NilLogger(t *testing.T) {
	if observability.WithTrace(context.Background(), nil) == nil {
		t.Error("WithTrace(nil) returned a nil logger")
	}
}
