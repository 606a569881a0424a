package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextLoggerCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "modguard-test"})

	ctx := base.WithContext(context.Background())
	ctx = WithFields(ctx, Fields{FieldRequestID: "req-1"})
	ctx = SetComponent(ctx, "profanity")

	CtxInfo(ctx, "checked %d words", 3)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "checked 3 words" {
		t.Errorf("message = %v", line["message"])
	}
	if line[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", line[FieldRequestID])
	}
	if line[FieldComponent] != "profanity" {
		t.Errorf("component = %v", line[FieldComponent])
	}
	if line["service"] != "modguard-test" {
		t.Errorf("service = %v", line["service"])
	}
	if GetRequestID(ctx) != "req-1" {
		t.Errorf("GetRequestID = %q", GetRequestID(ctx))
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != GetDefault() {
		t.Fatal("expected default logger for bare context")
	}
}

func TestEntryMergesMetricFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := New(&Config{Level: "info", Output: &buf}).WithContext(context.Background())

	With(Fields{FieldStatus: 200}).WithDuration(42).WithCount(2).Info(ctx, "done")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line[FieldDurationMs] != float64(42) || line[FieldCount] != float64(2) || line[FieldStatus] != float64(200) {
		t.Errorf("unexpected metric fields: %v", line)
	}
}
