// Package async provides utilities for parallel task execution with
// error collection.
//
// The [RunLimited] function executes multiple operations concurrently
// under a parallelism bound and returns the first error. It is used to
// fan out probe provisioning and pairwise reachability tests without
// flooding the cluster API.
package async
