package graph

import "errors"

// ErrCycleDetected is returned by TopologicalSort/DetectCycles when the
// node/edge set contains a back-edge; §9 forbids cyclic graphs by
// construction, so this is always a workflow-build-time rejection, never a
// runtime condition the scheduler has to recover from.
var ErrCycleDetected = errors.New("graph: cycle detected, workflow is not a DAG")
