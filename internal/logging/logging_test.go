package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{name: "Defaults", level: "info", format: "json", wantLevel: logrus.InfoLevel, wantJSON: true},
		{name: "Debug text", level: "debug", format: "TEXT", wantLevel: logrus.DebugLevel, wantJSON: false},
		{name: "Unknown level", level: "loud", format: "json", wantLevel: logrus.InfoLevel, wantJSON: true},
		{name: "Unknown format", level: "warn", format: "xml", wantLevel: logrus.WarnLevel, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)

			assert.Equal(t, tt.wantLevel, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestOrDefault(t *testing.T) {
	assert.NotNil(t, OrDefault(nil))

	custom := logrus.New()
	assert.Same(t, custom, OrDefault(custom))
}
