// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the public contracts of hioload-waitset: the
// EventSource abstraction multiplexed by a WaitSet, signal-handling and
// run-loop result enumerations, and the structured error taxonomy shared
// by all packages.
package api
