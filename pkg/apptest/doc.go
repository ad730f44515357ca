// Package apptest exercises AppBridge connectors from Go tests.
//
// ActionTester and TriggerTester build the invocation contexts the runtime
// would build (connection, JSON-encoded input, trigger store) and pass them
// straight to the connector. They add no behavior of their own; the
// connector's response and error come back unchanged.
//
//	conn, _ := apptest.TestConnection(apptest.BaseConnection(ctrl.BaseURL()))
//	actions := apptest.NewActionTester(app, conn)
//	resp, err := actions.ExecuteAction(ctx, "create_contact", map[string]any{
//	    "email": "ada@example.com",
//	})
//
// ValidateAgainstSchema and JSONPath help assert on what came back.
package apptest
