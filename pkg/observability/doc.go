/*
Package observability holds the Prometheus collectors netspec exports.

Metrics are registered on a caller-supplied registerer so tests and embedded
servers can keep their own registry instead of the global default.
*/
package observability
