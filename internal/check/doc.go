// Package check implements the connectivity-matrix test engine: node
// discovery, probe provisioning with lifecycle tracking, pairwise
// reachability testing under bounded concurrency, matrix aggregation,
// and guaranteed teardown.
package check
