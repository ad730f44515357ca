// Package wiremock is a client for the admin API of a WireMock-compatible
// mock server, together with the stub mapping document types it exchanges.
//
// Only the admin endpoints the test kit needs are covered:
//
//	GET    /__admin/health
//	GET    /__admin/mappings
//	POST   /__admin/mappings          (201 on success)
//	DELETE /__admin/mappings
//	DELETE /__admin/mappings/{id}
//	GET    /__admin/requests
//	DELETE /__admin/requests
//
// Health checks return a HealthResult instead of an error so that callers
// polling a starting server can tell "not ready yet" apart from a failure
// that will never resolve (see IsTransient).
//
// Mapping files on disk can be loaded with LoadMappingFiles, which accepts
// JSON or YAML documents holding one mapping, an array of mappings, or
// WireMock's {"mappings": [...]} export wrapper.
package wiremock
