package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/workflow"
	"github.com/m-mizutani/gt"
)

const feedPolicy = `package feed

default discard := false

discard if {
	input.type == "news"
	contains(input.title, "ฟุตบอล")
}

severity := "critical" if {
	input.type == "earthquake"
	input.near_thailand
	input.magnitude >= 5.5
}
`

func TestFeedPolicyFromDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "feed.rego"), []byte(feedPolicy), 0644))

	engine, err := workflow.New(ctx, dir)
	gt.NoError(t, err)
	gt.True(t, engine.Enabled())

	t.Run("discard by title", func(t *testing.T) {
		d, err := engine.Evaluate(ctx, workflow.FeedInput{
			Type:     model.AlertTypeNews,
			Title:    "น้ำท่วมสนามฟุตบอล",
			Severity: model.SeverityWarning,
		})
		gt.NoError(t, err)
		gt.True(t, d.Discard)
	})

	t.Run("severity override", func(t *testing.T) {
		d, err := engine.Evaluate(ctx, workflow.FeedInput{
			Type:         model.AlertTypeEarthquake,
			Magnitude:    5.6,
			NearThailand: true,
			Severity:     model.SeverityWarning,
		})
		gt.NoError(t, err)
		gt.False(t, d.Discard)
		gt.Equal(t, d.Severity, model.SeverityCritical)
	})

	t.Run("untouched item keeps severity", func(t *testing.T) {
		d, err := engine.Evaluate(ctx, workflow.FeedInput{
			Type:      model.AlertTypeEarthquake,
			Magnitude: 6.1,
			Severity:  model.SeverityWarning,
		})
		gt.NoError(t, err)
		gt.False(t, d.Discard)
		gt.Equal(t, d.Severity, model.SeverityWarning)
	})
}

func TestFeedPolicyDisabled(t *testing.T) {
	ctx := context.Background()

	engine, err := workflow.New(ctx, "")
	gt.NoError(t, err)
	gt.False(t, engine.Enabled())

	empty, err := workflow.New(ctx, t.TempDir())
	gt.NoError(t, err)
	gt.False(t, empty.Enabled())

	d, err := engine.Evaluate(ctx, workflow.FeedInput{Severity: model.SeverityInfo})
	gt.NoError(t, err)
	gt.False(t, d.Discard)
	gt.Equal(t, d.Severity, model.SeverityInfo)
}

func TestFeedPolicyUnknownSeverity(t *testing.T) {
	ctx := context.Background()
	engine, err := workflow.NewWithModules(ctx, map[string]string{
		"bad.rego": "package feed\n\nseverity := \"panic\"\n",
	})
	gt.NoError(t, err)

	_, err = engine.Evaluate(ctx, workflow.FeedInput{Severity: model.SeverityInfo})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidSeverity))
}

func TestFeedPolicyCompileError(t *testing.T) {
	_, err := workflow.NewWithModules(context.Background(), map[string]string{
		"broken.rego": "package feed\n\ndiscard if {",
	})
	gt.Error(t, err)
}
