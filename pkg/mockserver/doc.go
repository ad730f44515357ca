// Package mockserver controls a WireMock-compatible mock HTTP server for
// connector test suites.
//
// A Controller brings the server up through an orchestrator, waits for
// /__admin/health to answer, and then registers endpoint stubs through the
// admin API. Stubs are cleared between scenarios and the server is torn
// down when the suite ends.
//
// # Quick Start
//
//	ctrl := mockserver.New(
//	    mockserver.WithLogger(logger),
//	)
//	if !ctrl.Start(ctx) {
//	    // Docker missing or the server never became healthy; the reason
//	    // was logged and is available from ctrl.Err().
//	    return
//	}
//	defer ctrl.Stop(ctx)
//
//	ctrl.MockEndpoint(ctx, mockserver.MethodGet, "/users/1",
//	    map[string]any{"id": 1, "name": "Ada"})
//
//	resp, _ := http.Get(ctrl.BaseURL() + "/users/1")
//
// # Fluent Stubs
//
// Stub returns a builder for the less common knobs:
//
//	ctrl.Stub(mockserver.MethodPost, "/orders").
//	    WithStatus(201).
//	    WithHeader("Location", "/orders/7").
//	    WithJSON(order).
//	    Reply(ctx)
//
//	ctrl.Stub(mockserver.MethodGet, "/orders/[0-9]+").
//	    Pattern().
//	    WithJSON(order).
//	    Reply(ctx)
//
// # Failure Handling
//
// Start, MockEndpoint and MockEndpointPattern return false instead of an
// error and write one log line describing the failure. Register returns
// the underlying error (a *wiremock.StatusError when the server rejects a
// mapping) for callers that need it.
//
// # Request Journal
//
// The server records every request it receives. AssertCalled,
// AssertCalledTimes and AssertNotCalled check the journal from a test:
//
//	ctrl.AssertCalledTimes(t, mockserver.MethodGet, "/users/{id}", 1)
package mockserver
