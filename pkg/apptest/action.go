package apptest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/standout/appbridge-testkit/pkg/appbridge"
)

// ActionTester invokes a connector's actions with a fixed connection.
type ActionTester struct {
	app        appbridge.App
	connection appbridge.Connection
}

// NewActionTester creates an ActionTester for app.
func NewActionTester(app appbridge.App, connection appbridge.Connection) *ActionTester {
	return &ActionTester{app: app, connection: connection}
}

// Connection returns the connection passed to every action.
func (t *ActionTester) Connection() appbridge.Connection {
	return t.connection
}

// ExecuteAction runs the named action with input encoded as JSON.
func (t *ActionTester) ExecuteAction(ctx context.Context, name string, input any) (appbridge.ActionResponse, error) {
	serialized, err := encodeJSON(input)
	if err != nil {
		return appbridge.ActionResponse{}, fmt.Errorf("failed to encode input for action %q: %w", name, err)
	}
	return t.app.ExecuteAction(ctx, t.context(name, serialized))
}

// InputSchema returns the named action's input JSON Schema.
func (t *ActionTester) InputSchema(ctx context.Context, name string) (string, error) {
	return t.app.ActionInputSchema(ctx, t.context(name, "{}"))
}

// OutputSchema returns the named action's output JSON Schema.
func (t *ActionTester) OutputSchema(ctx context.Context, name string) (string, error) {
	return t.app.ActionOutputSchema(ctx, t.context(name, "{}"))
}

// ExecuteValidated validates input against the action's input schema,
// executes the action, and validates the output against its output
// schema. Schema violations are returned as *SchemaError.
func (t *ActionTester) ExecuteValidated(ctx context.Context, name string, input any) (appbridge.ActionResponse, error) {
	serialized, err := encodeJSON(input)
	if err != nil {
		return appbridge.ActionResponse{}, fmt.Errorf("failed to encode input for action %q: %w", name, err)
	}

	inSchema, err := t.InputSchema(ctx, name)
	if err != nil {
		return appbridge.ActionResponse{}, err
	}
	if err := ValidateAgainstSchema(inSchema, json.RawMessage(serialized)); err != nil {
		return appbridge.ActionResponse{}, fmt.Errorf("input of action %q: %w", name, err)
	}

	resp, err := t.app.ExecuteAction(ctx, t.context(name, serialized))
	if err != nil {
		return resp, err
	}

	outSchema, err := t.OutputSchema(ctx, name)
	if err != nil {
		return resp, err
	}
	if err := ValidateAgainstSchema(outSchema, json.RawMessage(resp.SerializedOutput)); err != nil {
		return resp, fmt.Errorf("output of action %q: %w", name, err)
	}
	return resp, nil
}

func (t *ActionTester) context(name, serializedInput string) appbridge.ActionContext {
	return appbridge.ActionContext{
		ActionID:        name,
		Connection:      t.connection,
		SerializedInput: serializedInput,
	}
}
