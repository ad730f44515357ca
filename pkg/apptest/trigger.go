package apptest

import (
	"context"
	"fmt"

	"github.com/standout/appbridge-testkit/pkg/appbridge"
)

// TriggerTester polls a connector's triggers with the test connection.
type TriggerTester struct {
	app        appbridge.App
	connection appbridge.Connection
}

// NewTriggerTester wraps connectionData in the test connection and creates
// a TriggerTester for app.
func NewTriggerTester(app appbridge.App, connectionData any) (*TriggerTester, error) {
	conn, err := TestConnection(connectionData)
	if err != nil {
		return nil, err
	}
	return &TriggerTester{app: app, connection: conn}, nil
}

// Connection returns the connection passed to every trigger.
func (t *TriggerTester) Connection() appbridge.Connection {
	return t.connection
}

// FetchEvents polls the named trigger. A nil input or store is sent as {}.
func (t *TriggerTester) FetchEvents(ctx context.Context, name string, input, store any) (appbridge.TriggerResponse, error) {
	serializedInput, err := encodeJSON(input)
	if err != nil {
		return appbridge.TriggerResponse{}, fmt.Errorf("failed to encode input for trigger %q: %w", name, err)
	}
	serializedStore, err := encodeJSON(store)
	if err != nil {
		return appbridge.TriggerResponse{}, fmt.Errorf("failed to encode store for trigger %q: %w", name, err)
	}
	return t.app.FetchEvents(ctx, t.context(name, serializedStore, serializedInput))
}

// InputSchema returns the named trigger's input JSON Schema.
func (t *TriggerTester) InputSchema(ctx context.Context, name string) (string, error) {
	return t.app.TriggerInputSchema(ctx, t.context(name, "{}", "{}"))
}

// OutputSchema returns the named trigger's output JSON Schema.
func (t *TriggerTester) OutputSchema(ctx context.Context, name string) (string, error) {
	return t.app.TriggerOutputSchema(ctx, t.context(name, "{}", "{}"))
}

func (t *TriggerTester) context(name, store, serializedInput string) appbridge.TriggerContext {
	return appbridge.TriggerContext{
		TriggerID:       name,
		Connection:      t.connection,
		Store:           store,
		SerializedInput: serializedInput,
	}
}
