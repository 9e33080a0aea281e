/*
Package observability exposes revitgen's Prometheus metrics.

Metrics are registered on a private registry so several engines (and tests) can
coexist in one process. Serve them with Handler.
*/
package observability
