// Package workers determines concurrency limits that respect container
// CPU constraints.
//
// runtime.NumCPU() reports the host CPU count even under cgroup limits;
// GOMAXPROCS (Go 1.19+) reflects the container limit, so sizing from it
// avoids oversubscribing a constrained pod. The ORCHESTRATOR_WORKERS
// environment variable overrides the calculation for operators.
package workers
