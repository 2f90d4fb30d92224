// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import "fmt"

// ConvergenceError reports a solver iteration that exceeded its iteration
// budget without meeting its tolerance. Callers can retry with a relaxed
// tolerance or a better initial guess; it is not an invariant violation.
type ConvergenceError struct {
	Routine string
	Node    int
	Iters   int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("hydraulics: %s did not converge at node %d after %d iterations", e.Routine, e.Node, e.Iters)
}

// InvariantError reports a physically impossible state (negative depth, a
// singular Preissmann pivot) that the caller must treat as fatal rather
// than retry, per the module's error-taxonomy split between recoverable
// convergence failures and invariant violations.
type InvariantError struct {
	Routine string
	Node    int
	Detail  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("hydraulics: %s: invariant violated at node %d: %s", e.Routine, e.Node, e.Detail)
}
