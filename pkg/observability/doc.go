/*
Package observability exports the assertion registry's lifecycle counters as
Prometheus metrics, one counter per transition labelled by matcher. It lets
long-running harnesses (soak tests, staging probes) scrape what the assertions
are seeing instead of only learning about it on failure.
*/
package observability
