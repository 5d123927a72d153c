package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestLevels(t *testing.T) {
	testCases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"WARN", false, false, true},
		{"warning", false, false, true},
		{"error", false, false, false},
		{"unknown", false, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(buf, logging.WithLevel(tc.level))

			logger.Debug("dbg-line")
			logger.Info("info-line")
			logger.Warn("warn-line")
			logger.Error("error-line")

			out := gt.S(t, buf.String())
			if tc.wantDebug {
				out.Contains("dbg-line")
			} else {
				out.NotContains("dbg-line")
			}
			if tc.wantInfo {
				out.Contains("info-line")
			} else {
				out.NotContains("info-line")
			}
			if tc.wantWarn {
				out.Contains("warn-line")
			} else {
				out.NotContains("warn-line")
			}
			out.Contains("error-line")
		})
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf, logging.WithFormat(logging.FormatJSON))
	logger.Info("alert cycle done", "new", 3)

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	gt.Equal(t, record["msg"], any("alert cycle done"))
	gt.Equal(t, record["new"], any(float64(3)))
}

func TestConsoleRendersGoerrValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf)

	err := goerr.New("feed failed", goerr.V("source", "usgs"))
	logger.Error("fetch error", logging.ErrAttr(err))

	gt.S(t, buf.String()).Contains("feed failed")
	gt.S(t, buf.String()).Contains("usgs")
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf).With("user_id", "abcd1234")
	ctx := logging.With(context.Background(), logger)

	gt.Equal(t, logging.From(ctx), logger)
	logging.From(ctx).Info("hello")
	gt.S(t, buf.String()).Contains("abcd1234")
}

func TestFromFallsBackToDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New(buf)
	logging.SetDefault(custom)

	gt.Equal(t, logging.From(context.Background()), custom)
}
