package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/logging"
)

func TestLevelFiltering(t *testing.T) {
	t.Setenv(logging.EnvLevel, "")
	var buf bytes.Buffer
	log := logging.New("info", &buf)

	log.Debug("hidden")
	log.Info("commit created", zap.String("hash", "abc"))
	_ = log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "commit created")
	assert.Contains(t, out, "abc")
}

func TestEnvOverridesLevel(t *testing.T) {
	t.Setenv(logging.EnvLevel, "debug")
	var buf bytes.Buffer
	log := logging.New("error", &buf)

	log.Debug("lock acquired")
	_ = log.Sync()
	assert.Contains(t, buf.String(), "lock acquired")
}
