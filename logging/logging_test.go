package logging_test

import (
	"testing"

	"github.com/plus3/voxar/config"
	"github.com/plus3/voxar/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := logging.New(config.Log{Level: "warn", Encoding: "json"})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = logging.New(config.Log{Level: "chatty"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))
}
