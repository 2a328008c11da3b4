// Package cluster abstracts the Kubernetes API operations the checker
// needs: node enumeration, probe pod and service lifecycle, pod status,
// and command execution inside probe pods.
//
// The [Gateway] interface is the injection point; [Client] is the real
// client-go implementation and [fakes.Gateway] the in-memory test double.
package cluster
