// Package orchestrator brings the mock server's container up and down.
//
// Two backends implement Orchestrator:
//
//   - Compose shells out to the project's setup script and to
//     docker compose, using a Runner so tests can substitute the commands.
//   - Container starts the WireMock image directly with testcontainers-go
//     and reports the host port it was published on.
//
// Backends that know where the server ends up listening also implement
// Endpointer; callers should prefer that address over a configured one.
package orchestrator
