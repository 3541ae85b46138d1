package linkml

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// runConstraint validates value against the constraints named on an
// anonymous slot expression (range, pattern, minimum_value, maximum_value,
// required), using the same leaf validators as the main engine.
func runConstraint(value Value, constraint *SlotDefinition, ctx *ValidationContext) []Issue {
	var issues []Issue
	for _, v := range StandardLeafValidators() {
		issues = append(issues, v.Validate(value, constraint, ctx)...)
	}
	return issues
}

// AnyOf iterates constraints; the first whose evaluation yields zero
// issues satisfies the slot (short-circuit). On failure it emits one
// ANY_OF_CONSTRAINT_FAILED error plus sub-issues demoted to warnings.
func AnyOf(value Value, constraints []*SlotDefinition, ctx *ValidationContext) []Issue {
	if len(constraints) == 0 {
		return nil
	}
	var subIssues []Issue
	for i, c := range constraints {
		issues := runConstraint(value, c, ctx)
		if len(issues) == 0 {
			return nil
		}
		for _, iss := range issues {
			iss.Context = map[string]any{"constraint_index": i}
			subIssues = append(subIssues, iss)
		}
	}
	out := []Issue{{
		Severity:  SeverityError,
		Message:   "no any_of constraint was satisfied",
		Path:      ctx.CurrentPath(),
		Validator: "AnyOf",
		Code:      "ANY_OF_CONSTRAINT_FAILED",
	}}
	for _, iss := range subIssues {
		iss.Severity = SeverityWarning
		out = append(out, iss)
	}
	return out
}

// AllOf requires every constraint to yield zero issues, evaluated
// sequentially unless the constraint count exceeds parallelThreshold, in
// which case each constraint runs in its own goroutine against a cloned
// context (per-thread clones, since ValidationContext isn't safe for
// concurrent use) joined via errgroup.
// Sub-issues are always appended in index order regardless of evaluation
// mode.
func AllOf(value Value, constraints []*SlotDefinition, ctx *ValidationContext, parallelThreshold int) []Issue {
	if len(constraints) == 0 {
		return nil
	}

	results := make([][]Issue, len(constraints))

	if len(constraints) > parallelThreshold {
		var g errgroup.Group
		for i, c := range constraints {
			i, c := i, c
			branchCtx := ctx.Clone()
			g.Go(func() error {
				results[i] = runConstraint(value, c, branchCtx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, c := range constraints {
			results[i] = runConstraint(value, c, ctx)
		}
	}

	var failed []int
	var subIssues []Issue
	for i, issues := range results {
		if len(issues) > 0 {
			failed = append(failed, i)
			for _, iss := range issues {
				iss.Message = fmt.Sprintf("[%d] %s", i, iss.Message)
				subIssues = append(subIssues, iss)
			}
		}
	}
	if len(failed) == 0 {
		return nil
	}

	out := []Issue{{
		Severity:  SeverityError,
		Message:   fmt.Sprintf("all_of constraints failed at indices %v", failed),
		Path:      ctx.CurrentPath(),
		Validator: "AllOf",
		Code:      "ALL_OF_CONSTRAINT_FAILED",
	}}
	return append(out, subIssues...)
}

// ExactlyOneOf counts satisfied constraints: zero is
// EXACTLY_ONE_OF_NONE_SATISFIED; more than one is
// EXACTLY_ONE_OF_MULTIPLE_SATISFIED with the satisfied index list.
func ExactlyOneOf(value Value, constraints []*SlotDefinition, ctx *ValidationContext) []Issue {
	if len(constraints) == 0 {
		return nil
	}
	var satisfied []int
	for i, c := range constraints {
		if len(runConstraint(value, c, ctx)) == 0 {
			satisfied = append(satisfied, i)
		}
	}
	switch len(satisfied) {
	case 0:
		return []Issue{{
			Severity:  SeverityError,
			Message:   "no exactly_one_of constraint was satisfied",
			Path:      ctx.CurrentPath(),
			Validator: "ExactlyOneOf",
			Code:      "EXACTLY_ONE_OF_NONE_SATISFIED",
		}}
	case 1:
		return nil
	default:
		return []Issue{{
			Severity:  SeverityError,
			Message:   fmt.Sprintf("multiple exactly_one_of constraints satisfied: %v", satisfied),
			Path:      ctx.CurrentPath(),
			Validator: "ExactlyOneOf",
			Code:      "EXACTLY_ONE_OF_MULTIPLE_SATISFIED",
			Context:   map[string]any{"satisfied_indices": satisfied},
		}}
	}
}

// NoneOf is fail-fast: it runs each constraint through the full leaf
// validators in index order and, on the first satisfied constraint, emits
// NONE_OF_CONSTRAINT_SATISFIED with its index without evaluating the rest.
// It makes a single pass; there is no separate cheaper probe pass.
func NoneOf(value Value, constraints []*SlotDefinition, ctx *ValidationContext) []Issue {
	if len(constraints) == 0 {
		return nil
	}
	for i, c := range constraints {
		if len(runConstraint(value, c, ctx)) == 0 {
			return []Issue{{
				Severity:  SeverityError,
				Message:   fmt.Sprintf("none_of constraint %d was satisfied", i),
				Path:      ctx.CurrentPath(),
				Validator: "NoneOf",
				Code:      "NONE_OF_CONSTRAINT_SATISFIED",
				Context:   map[string]any{"satisfied_index": i},
			}}
		}
	}
	return nil
}

// sortedIndices is a small helper kept for callers that want a
// deterministic rendering of a satisfied/failed index set.
func sortedIndices(indices []int) []int {
	out := append([]int(nil), indices...)
	sort.Ints(out)
	return out
}
