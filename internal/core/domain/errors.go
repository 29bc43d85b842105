package domain

import "go.trai.ch/zerr"

var (
	// ErrCheckAlreadyExists is returned when attempting to add a check with
	// a name that already exists in the project.
	ErrCheckAlreadyExists = zerr.New("check already exists")

	// ErrMissingDependency is returned when a check references a
	// dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrSelfDependency is returned when a check lists itself in
	// depends_on.
	ErrSelfDependency = zerr.New("check cannot depend on itself")

	// ErrCycleDetected is returned when a cycle is detected in the check
	// dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrCheckNotFound is returned when a requested check is not found in
	// the graph.
	ErrCheckNotFound = zerr.New("check not found")

	// ErrAmbiguousDefinition is returned when a check definition has both
	// a command and a path; having neither is the Aggregate kind.
	ErrAmbiguousDefinition = zerr.New("check cannot have both command and path")

	// ErrPerFileRequiresCommand is returned when per_file is set without
	// a command and non-empty cache_paths.
	ErrPerFileRequiresCommand = zerr.New("per_file requires a command and non-empty cache_paths")

	// ErrSubprojectReentry is returned when a sub-project path is visited
	// more than once within a single Run or Status invocation.
	ErrSubprojectReentry = zerr.New("sub-project re-entry detected")

	// ErrNoTargetsResolved is returned when a requested target name does
	// not resolve to any check in the graph.
	ErrNoTargetsResolved = zerr.New("target does not resolve to a known check")

	// ErrCheckFailed marks a span's error when a check's RunResult is
	// RunFailure or RunTimedOut; it carries no information beyond "this
	// check did not succeed", the detail lives in the command's captured
	// output.
	ErrCheckFailed = zerr.New("check did not succeed")
)
