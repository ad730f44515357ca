// Package cli implements the appbridge-mock command, which drives the
// WireMock server used by connector tests from a shell or CI job.
package cli
