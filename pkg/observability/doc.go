/*
Package observability provides ports.Diagnostics implementations for the feed engine.

Metrics exports counters and histograms to Prometheus, Logger writes every report
as a structured log record, and Multi fans reports out to several sinks.
*/
package observability
