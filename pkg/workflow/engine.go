package workflow

import (
	"context"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/print"
)

// regoPrintHook forwards Rego print() output to the context logger
type regoPrintHook struct {
	ctx context.Context
}

func (h *regoPrintHook) Print(_ print.Context, message string) error {
	logging.From(h.ctx).Debug("rego print", "message", message)
	return nil
}

// FeedInput is what a feed policy sees for each item. Severity is the
// keyword/magnitude classification made before the policy runs.
type FeedInput struct {
	Type         model.AlertType `json:"type"`
	Source       string          `json:"source"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Magnitude    float64         `json:"magnitude"`
	Location     string          `json:"location"`
	NearThailand bool            `json:"near_thailand"`
	Severity     model.Severity  `json:"severity"`
}

// Decision is the policy outcome for one item
type Decision struct {
	Discard  bool
	Severity model.Severity
}

// Engine evaluates the optional feed policy. A nil policy keeps every item
// with its computed severity.
type Engine struct {
	policy *rego.PreparedEvalQuery
}

// New loads the Rego files in policyDir. An empty policyDir disables the policy.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	if policyDir == "" {
		return &Engine{}, nil
	}

	policy, err := loadPolicy(ctx, policyDir)
	if err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

// NewWithModules compiles in-memory policy modules keyed by file name
func NewWithModules(ctx context.Context, modules map[string]string) (*Engine, error) {
	policy, err := prepareQuery(ctx, modules, feedQuery)
	if err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

// Enabled reports whether a policy is loaded
func (e *Engine) Enabled() bool {
	return e != nil && e.policy != nil
}

// Evaluate applies the policy to one feed item. The policy may set
// `discard` to drop the item or `severity` to override its tier.
func (e *Engine) Evaluate(ctx context.Context, input FeedInput) (*Decision, error) {
	decision := &Decision{Severity: input.Severity}
	if !e.Enabled() {
		return decision, nil
	}

	rs, err := e.policy.Eval(ctx, rego.EvalInput(input), rego.EvalPrintHook(&regoPrintHook{ctx: ctx}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate feed policy", goerr.V("title", input.Title))
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return decision, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, goerr.New("invalid feed policy result", goerr.V("value", rs[0].Expressions[0].Value))
	}

	if discard, ok := data["discard"].(bool); ok {
		decision.Discard = discard
	}
	if sev, ok := data["severity"].(string); ok && sev != "" {
		override := model.Severity(sev)
		if err := override.Validate(); err != nil {
			return nil, goerr.Wrap(err, "feed policy returned unknown severity")
		}
		decision.Severity = override
	}

	return decision, nil
}
