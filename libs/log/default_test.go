package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/libs/log"
)

func TestNewDefaultLogger(t *testing.T) {
	testCases := map[string]struct {
		format    string
		level     string
		expectErr bool
	}{
		"invalid format": {
			format:    "foo",
			level:     log.LogLevelInfo,
			expectErr: true,
		},
		"invalid level": {
			format:    log.LogFormatJSON,
			level:     "foo",
			expectErr: true,
		},
		"valid format and level": {
			format:    log.LogFormatJSON,
			level:     log.LogLevelInfo,
			expectErr: false,
		},
		"plain format": {
			format:    log.LogFormatPlain,
			level:     log.LogLevelDebug,
			expectErr: false,
		},
	}

	for name, tc := range testCases {
		tc := tc

		t.Run(name, func(t *testing.T) {
			_, err := log.NewDefaultLogger(tc.format, tc.level)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.NewLogger(&buf, log.LogFormatJSON, log.LogLevelInfo)
	require.NoError(t, err)

	logger.Debug("hidden", "k", "v")
	assert.Zero(t, buf.Len())

	logger.With("module", "consensus").Info("dropped request", "reason", "stale", "height", 5)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "dropped request", line["message"])
	assert.Equal(t, "consensus", line["module"])
	assert.Equal(t, "stale", line["reason"])
	assert.EqualValues(t, 5, line["height"])
}

func TestNopLogger(t *testing.T) {
	logger := log.NewNopLogger()
	logger.With("a", 1).Error("nothing happens")
	log.NewTestingLogger(t).Info("testing logger", "ok", true)
}
