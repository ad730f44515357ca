package appbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Action is a connector action handler.
type Action interface {
	InputSchema(ctx context.Context, ac ActionContext) (json.RawMessage, error)
	OutputSchema(ctx context.Context, ac ActionContext) (json.RawMessage, error)
	// Execute returns a value that is encoded as the action output.
	Execute(ctx context.Context, ac ActionContext) (any, error)
}

// Trigger is a connector trigger handler.
type Trigger interface {
	InputSchema(ctx context.Context, tc TriggerContext) (json.RawMessage, error)
	OutputSchema(ctx context.Context, tc TriggerContext) (json.RawMessage, error)
	FetchEvents(ctx context.Context, tc TriggerContext) (TriggerResponse, error)
}

// Router is an App that dispatches on ActionID and TriggerID. Unknown IDs
// fail with CodeUnsupported. Handler errors that are not *AppError are
// reported with CodeOther.
type Router struct {
	mu       sync.RWMutex
	actions  map[string]Action
	triggers map[string]Trigger
}

var _ App = (*Router)(nil)

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		actions:  make(map[string]Action),
		triggers: make(map[string]Trigger),
	}
}

// HandleAction registers a for id. It panics if id is already registered.
func (r *Router) HandleAction(id string, a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[id]; exists {
		panic(fmt.Sprintf("appbridge: multiple registrations for action %q", id))
	}
	r.actions[id] = a
}

// HandleTrigger registers t for id. It panics if id is already registered.
func (r *Router) HandleTrigger(id string, t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.triggers[id]; exists {
		panic(fmt.Sprintf("appbridge: multiple registrations for trigger %q", id))
	}
	r.triggers[id] = t
}

// ActionIDs returns the registered action IDs, sorted.
func (r *Router) ActionIDs(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions), nil
}

// TriggerIDs returns the registered trigger IDs, sorted.
func (r *Router) TriggerIDs(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.triggers), nil
}

func (r *Router) ActionInputSchema(ctx context.Context, ac ActionContext) (string, error) {
	a, err := r.action(ac.ActionID)
	if err != nil {
		return "", err
	}
	schema, err := a.InputSchema(ctx, ac)
	if err != nil {
		return "", asAppError(err)
	}
	return prettySchema(schema)
}

func (r *Router) ActionOutputSchema(ctx context.Context, ac ActionContext) (string, error) {
	a, err := r.action(ac.ActionID)
	if err != nil {
		return "", err
	}
	schema, err := a.OutputSchema(ctx, ac)
	if err != nil {
		return "", asAppError(err)
	}
	return prettySchema(schema)
}

func (r *Router) ExecuteAction(ctx context.Context, ac ActionContext) (ActionResponse, error) {
	a, err := r.action(ac.ActionID)
	if err != nil {
		return ActionResponse{}, err
	}
	result, err := a.Execute(ctx, ac)
	if err != nil {
		return ActionResponse{}, asAppError(err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return ActionResponse{}, Errorf(CodeOther, "failed to serialize response")
	}
	return ActionResponse{SerializedOutput: string(out)}, nil
}

func (r *Router) TriggerInputSchema(ctx context.Context, tc TriggerContext) (string, error) {
	t, err := r.trigger(tc.TriggerID)
	if err != nil {
		return "", err
	}
	schema, err := t.InputSchema(ctx, tc)
	if err != nil {
		return "", asAppError(err)
	}
	return prettySchema(schema)
}

func (r *Router) TriggerOutputSchema(ctx context.Context, tc TriggerContext) (string, error) {
	t, err := r.trigger(tc.TriggerID)
	if err != nil {
		return "", err
	}
	schema, err := t.OutputSchema(ctx, tc)
	if err != nil {
		return "", asAppError(err)
	}
	return prettySchema(schema)
}

func (r *Router) FetchEvents(ctx context.Context, tc TriggerContext) (TriggerResponse, error) {
	t, err := r.trigger(tc.TriggerID)
	if err != nil {
		return TriggerResponse{}, err
	}
	resp, err := t.FetchEvents(ctx, tc)
	if err != nil {
		return TriggerResponse{}, asAppError(err)
	}
	return resp, nil
}

func (r *Router) action(id string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[id]
	if !ok {
		return nil, Errorf(CodeUnsupported, "unknown action %q", id)
	}
	return a, nil
}

func (r *Router) trigger(id string) (Trigger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.triggers[id]
	if !ok {
		return nil, Errorf(CodeUnsupported, "unknown trigger %q", id)
	}
	return t, nil
}

func asAppError(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeOther, Message: err.Error()}
}

func prettySchema(schema json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, schema, "", "  "); err != nil {
		return "", Errorf(CodeOther, "failed to serialize schema: %v", err)
	}
	return buf.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
