// Package application provides the orchestration loop: one decision
// model, one capability registry, one turn at a time until the terminal
// capability fires or the budget runs out.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/orchestra-go/domain/action"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/domain/policy"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
	"github.com/felixgeelhaar/orchestra-go/domain/trajectory"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/logging"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/parser"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/resilience"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/statekit"
)

// Status classifies how a loop run ended.
type Status string

const (
	// StatusCompleted means the terminal capability produced an answer.
	StatusCompleted Status = "completed"

	// StatusBudgetExhausted means the turn budget ran out before the
	// terminal capability fired.
	StatusBudgetExhausted Status = "budget_exhausted"

	// StatusAborted means a decision-model call failed. The sole fatal path.
	StatusAborted Status = "aborted"
)

// Result is what a loop run returns. Every exit path produces one; the
// loop body never surfaces Go errors.
type Result struct {
	// Answer is the final answer text.
	Answer string `json:"answer"`

	// Sources are the citations the model attached to the answer.
	Sources []string `json:"sources"`

	// Cost is the total dollar cost of the run: model calls plus
	// capability dispatches. Equals the trajectory's step-cost sum.
	Cost float64 `json:"cost"`

	// Turns is the number of turns consumed.
	Turns int `json:"turns"`

	// Trajectory is the full step log for the run.
	Trajectory *trajectory.Trajectory `json:"trajectory"`

	// Status classifies the exit path.
	Status Status `json:"status"`
}

// Engine runs the orchestration loop. Construct once, run many queries;
// each Run gets its own trajectory and state machine interpreter, so a
// single engine is safe for concurrent queries as long as the provider
// and registry are.
type Engine struct {
	provider     model.Provider
	registry     capability.Registry
	executor     *resilience.Executor
	middleware   *middleware.Registry
	preferences  policy.Preferences
	tracer       telemetry.Tracer
	machine      *statekit.MachineConfig[*statemachine.Context]
	maxTurns     int
	modelName    string
	temperature  float64
	maxTokens    int
	terminalName string
	fallbackName string
	systemPrompt string
}

// New creates an engine from functional options. A provider and a
// registry are required; everything else has defaults.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		maxTurns:     10,
		temperature:  0.2,
		terminalName: "finish",
		preferences:  policy.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.maxTurns < 1 {
		return nil, errors.New("max turns must be at least 1")
	}
	if err := cfg.preferences.Validate(); err != nil {
		return nil, err
	}

	machine, err := statemachine.NewLoopMachine()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		provider:     cfg.provider,
		registry:     cfg.registry,
		executor:     cfg.executor,
		middleware:   cfg.middleware,
		preferences:  cfg.preferences,
		tracer:       cfg.tracer,
		machine:      machine,
		maxTurns:     cfg.maxTurns,
		modelName:    cfg.modelName,
		temperature:  cfg.temperature,
		maxTokens:    cfg.maxTokens,
		terminalName: cfg.terminalName,
		fallbackName: cfg.fallbackName,
		systemPrompt: cfg.systemPrompt,
	}
	if e.executor == nil {
		e.executor = resilience.NewDefaultExecutor()
	}
	if e.middleware == nil {
		e.middleware = middleware.NewRegistry()
	}
	return e, nil
}

// Run executes the loop for one query. The returned Result is never nil;
// model failure, parse trouble, and capability errors are all reported
// through it.
func (e *Engine) Run(ctx context.Context, query string) *Result {
	traj := trajectory.New(query)
	interp := statemachine.NewInterpreter(e.machine, statemachine.NewContext(query, traj, e.maxTurns))
	interp.Start()
	defer interp.Stop()

	var span telemetry.Span
	if e.tracer != nil {
		ctx, span = e.tracer.StartSpan(ctx, "loop.run",
			telemetry.WithAttributes(telemetry.String("query.id", traj.ID())))
		defer span.End()
	}

	p := parser.New(e.registry)
	dispatch := e.middleware.Chain()(e.dispatchHandler())

	messages := []model.Message{
		model.SystemMessage(e.buildSystemPrompt()),
		model.UserMessage(query),
	}

	for interp.BudgetRemaining() {
		interp.Send(statemachine.EventRequest)
		turn := interp.Turn()

		logging.Debug().
			Add(logging.QueryID(traj.ID())).
			Add(logging.Turn(turn)).
			Add(logging.Int("max_turns", e.maxTurns)).
			Msg("requesting decision")

		resp, err := e.provider.Complete(ctx, model.CompletionRequest{
			Model:       e.modelName,
			Messages:    messages,
			Temperature: e.temperature,
			MaxTokens:   e.maxTokens,
		})
		if err != nil {
			interp.Send(statemachine.EventAbort)
			logging.Error().
				Add(logging.QueryID(traj.ID())).
				Add(logging.Turn(turn)).
				Add(logging.ErrorField(err)).
				Msg("orchestrator call failed")
			if span != nil {
				span.RecordError(err)
				span.SetStatus(telemetry.StatusCodeError, "model call failed")
			}
			return e.finish(traj, interp, &Result{
				Answer:  fmt.Sprintf("Error: Failed to get response from orchestrator: %v", err),
				Sources: []string{},
				Status:  StatusAborted,
			})
		}

		interp.Send(statemachine.EventParse)
		act, parseErr := p.Parse(resp.Message.Content)
		if parseErr != nil {
			if e.fallbackName != "" && e.registry.Has(e.fallbackName) {
				act = parser.Fallback(query, parseErr, e.fallbackName)
			} else {
				// The malformed text still consumed a model call; record it
				// so cost totals stay honest, then queue the corrective
				// instruction for the next turn.
				traj.AddAction(resp.Message.Content, resp.Cost, resp.Latency)
				messages = append(messages,
					model.AssistantMessage(resp.Message.Content),
					model.UserMessage(fmt.Sprintf("Error: Could not parse your response. Please output valid JSON. Error: %v", parseErr)),
				)
				interp.Send(statemachine.EventRetry)
				logging.Warn().
					Add(logging.QueryID(traj.ID())).
					Add(logging.Turn(turn)).
					Add(logging.ErrorField(parseErr)).
					Msg("parse failed, retrying")
				continue
			}
		}

		traj.AddAction(act.JSON(), resp.Cost, resp.Latency)
		logging.Debug().
			Add(logging.QueryID(traj.ID())).
			Add(logging.Turn(turn)).
			Add(logging.Capability(act.Tool)).
			Add(logging.Confidence(act.Confidence)).
			Msg("action decided")

		if act.IsTerminal(e.terminalName) {
			interp.Send(statemachine.EventComplete)
			answer, sources := terminalPayload(act)
			return e.finish(traj, interp, &Result{
				Answer:  answer,
				Sources: sources,
				Status:  StatusCompleted,
			})
		}

		interp.Send(statemachine.EventDispatch)
		result := e.dispatchAction(ctx, dispatch, traj.ID(), turn, act)
		observation := formatObservation(act.Tool, result)
		traj.AddObservation(act.Tool, observation, result.Cost, result.Latency)

		messages = append(messages,
			model.AssistantMessage(act.JSON()),
			model.UserMessage(observation),
		)
	}

	interp.Send(statemachine.EventExhaust)
	return e.finish(traj, interp, &Result{
		Answer:  exhaustedSummary(traj),
		Sources: []string{},
		Status:  StatusBudgetExhausted,
	})
}

// finish fills in the accounting fields shared by every exit path.
func (e *Engine) finish(traj *trajectory.Trajectory, interp *statemachine.Interpreter, r *Result) *Result {
	r.Cost = traj.TotalCost()
	r.Turns = interp.Turn()
	r.Trajectory = traj

	logging.Info().
		Add(logging.QueryID(traj.ID())).
		Add(logging.Turn(r.Turns)).
		Add(logging.Cost(r.Cost)).
		Add(logging.State(string(r.Status))).
		Msg("loop finished")
	return r
}

// dispatchHandler is the innermost dispatch step: preference policy,
// then the resilient executor. The middleware chain wraps it.
func (e *Engine) dispatchHandler() middleware.Handler {
	return func(ctx context.Context, execCtx *middleware.ExecutionContext) capability.Result {
		if !e.preferences.Allows(execCtx.Capability.Descriptor()) {
			return capability.NewErrorResult(fmt.Sprintf(
				"Capability '%s' blocked: %v", execCtx.Capability.Name(), policy.ErrPrivacyRestricted))
		}
		return e.executor.Execute(ctx, execCtx.Capability, execCtx.Params)
	}
}

// dispatchAction resolves the capability and runs the middleware chain.
// The parser already validated the name, but the registry stays the
// authority: a race with Unregister still degrades to an error Result.
func (e *Engine) dispatchAction(ctx context.Context, dispatch middleware.Handler, queryID string, turn int, act action.Action) capability.Result {
	c, err := e.registry.Get(act.Tool)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Tool '%s' not found in registry", act.Tool))
	}
	return dispatch(ctx, &middleware.ExecutionContext{
		QueryID:    queryID,
		Turn:       turn,
		Capability: c,
		Params:     act.Parameters,
		Reason:     act.Reasoning,
	})
}

// terminalPayload extracts the answer and sources from the terminal
// action's parameters, applying the wire-contract defaults.
func terminalPayload(act action.Action) (string, []string) {
	answer := "No answer provided"
	if v, ok := act.StringParam("answer"); ok {
		answer = v
	}

	sources := []string{}
	switch v := act.Parameters["sources"].(type) {
	case []string:
		sources = append(sources, v...)
	case []any:
		for _, s := range v {
			if str, ok := s.(string); ok {
				sources = append(sources, str)
			}
		}
	case string:
		if v != "" {
			sources = append(sources, v)
		}
	}
	return answer, sources
}

// formatObservation renders a dispatch result as the user message fed
// back to the decision model.
func formatObservation(name string, result capability.Result) string {
	if result.Failed() {
		return fmt.Sprintf("[%s] Error: %s", name, result.Error)
	}
	return fmt.Sprintf("[%s] Result:\n%s", name, result.OutputString())
}

// exhaustedSummary is the graceful budget-exhaustion answer: not an
// error, just an honest account of what ran.
func exhaustedSummary(traj *trajectory.Trajectory) string {
	lines := make([]string, 0, traj.Len())
	for _, name := range traj.InvokedCapabilities() {
		lines = append(lines, "- Used "+name)
	}
	return "I was unable to complete the task within the allowed number of turns. Here's what I found so far:\n\n" +
		strings.Join(lines, "\n")
}

// buildSystemPrompt renders the decision contract: the capability list,
// the raw-JSON-only instruction, the action shape, and per-capability
// usage guidance. Privacy preferences filter the advertised list.
func (e *Engine) buildSystemPrompt() string {
	if e.systemPrompt != "" {
		return e.systemPrompt
	}

	eligible := e.preferences.Eligible(e.registry.Descriptors())

	var b strings.Builder
	b.WriteString("You are an intelligent research assistant that answers questions accurately using available tools.\n\n")
	b.WriteString("You have access to the following tools:\n")
	for _, d := range eligible {
		b.WriteString(d.PromptLine())
		b.WriteString("\n")
	}
	b.WriteString("\nFor each turn, analyze the query and available information, then output a JSON object with:\n")
	b.WriteString("{\n")
	b.WriteString("    \"reasoning\": \"Your step-by-step thinking about what to do next\",\n")
	b.WriteString("    \"tool\": \"tool_name\",\n")
	b.WriteString("    \"parameters\": {\"param1\": \"value1\", ...},\n")
	b.WriteString("    \"confidence\": 0.0-1.0\n")
	b.WriteString("}\n")
	b.WriteString("\nImportant rules:\n")
	b.WriteString("1. Always output valid JSON - no markdown code blocks, just raw JSON\n")
	rule := 2
	for _, d := range eligible {
		if d.Terminal || d.Name == e.terminalName {
			continue
		}
		fmt.Fprintf(&b, "%d. Use %s to %s\n", rule, d.Name, lowerFirst(d.Description))
		rule++
	}
	fmt.Fprintf(&b, "%d. Call %s when you have the complete answer with sources\n", rule, e.terminalName)
	b.WriteString("\nExample response:\n")
	b.WriteString(`{"reasoning": "I need to search for current information", "tool": "web_search", "parameters": {"query": "latest news on topic"}, "confidence": 0.9}`)
	b.WriteString("\n")
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
