package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"lootledger/internal/platform/logging"
)

func TestNewHonorsLevelAndFormat(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New(buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "session_id", "s-1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record must be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"session_id":"s-1"`) {
		t.Fatalf("expected json attribute, got %s", out)
	}
}
