// Package appbridge describes the AppBridge connector runtime that test
// suites drive: the action and trigger contexts it accepts, the responses
// and errors it returns, and the App interface connectors implement.
//
// The package also carries two pieces connectors commonly need in tests:
// Router, which dispatches action and trigger IDs to Go handlers, and
// APIClient, which calls an HTTP API described by a connection's data
// (base_url and headers), typically a mock server. RequestBodyWithoutEmptyValues
// turns action input into a request body the way generated actions do.
package appbridge
