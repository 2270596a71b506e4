package schema

import (
	"fmt"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// dependencies is the static prerequisite table: each directive kind names the
// kinds that must execute before it. The mapping is fixed, not derived from data.
var dependencies = map[Kind][]Kind{
	KindDerivedFrom:   {KindFrontmatterPart},
	KindFlattenArrays: {KindFrontmatterPart},
	KindDerivedUnique: {KindDerivedFrom},
}

// ProcessingOrder is a valid execution order for the detected directive kinds,
// partitioned into stages of mutually independent directives.
type ProcessingOrder struct {
	Sequence []Kind
	Stages   [][]Kind
	Graph    map[Kind][]Kind // prerequisite -> dependents, restricted to detected kinds
}

// Empty reports whether the order contains no directives.
func (o ProcessingOrder) Empty() bool { return len(o.Sequence) == 0 }

// SupportedKinds lists every directive kind the pipeline knows how to order.
// Pure constant query, independent of any schema instance.
func SupportedKinds() []Kind {
	return AllKinds()
}

// DependenciesOf returns the fixed prerequisite kinds for the given kind.
func DependenciesOf(kind Kind) []Kind {
	deps := dependencies[kind]
	out := make([]Kind, len(deps))
	copy(out, deps)
	return out
}

// ComputeOrder orders the detected directive kinds with Kahn's algorithm.
//
// Dependency edges pointing at kinds that were not detected are ignored: a
// directive whose prerequisite was never declared is simply unconstrained.
// Zero-in-degree kinds are removed in batches, so independent directives share
// a stage. Iteration follows Kind declaration order throughout, which makes
// the result deterministic for identical input. Any kinds left unprocessed
// after the queue drains form a cycle and are reported by name.
func ComputeOrder(detected []Kind) (ProcessingOrder, error) {
	order := ProcessingOrder{Graph: make(map[Kind][]Kind)}
	if len(detected) == 0 {
		return order, nil
	}

	present := make(map[Kind]bool, len(detected))
	for _, k := range detected {
		if !k.Valid() {
			return ProcessingOrder{}, fferrors.InvalidFormatError(fmt.Sprintf("unknown directive kind %d", k)).Build()
		}
		present[k] = true
	}

	inDegree := make(map[Kind]int, len(detected))
	for _, k := range detected {
		inDegree[k] = 0
	}
	for _, k := range detected {
		for _, dep := range dependencies[k] {
			if !present[dep] {
				continue
			}
			order.Graph[dep] = append(order.Graph[dep], k)
			inDegree[k]++
		}
	}

	remaining := len(inDegree)
	for remaining > 0 {
		var stage []Kind
		for k := Kind(0); k < kindCount; k++ {
			if deg, ok := inDegree[k]; ok && deg == 0 {
				stage = append(stage, k)
			}
		}
		if len(stage) == 0 {
			break
		}
		for _, k := range stage {
			delete(inDegree, k)
			for _, dependent := range order.Graph[k] {
				if _, ok := inDegree[dependent]; ok {
					inDegree[dependent]--
				}
			}
		}
		order.Stages = append(order.Stages, stage)
		order.Sequence = append(order.Sequence, stage...)
		remaining = len(inDegree)
	}

	if remaining > 0 {
		var unresolved []string
		for k := Kind(0); k < kindCount; k++ {
			if _, ok := inDegree[k]; ok {
				unresolved = append(unresolved, k.String())
			}
		}
		return ProcessingOrder{}, fferrors.CyclicDependencyError(fmt.Sprintf("circular dependency among directives: %v", unresolved)).
			WithContext("unresolved", unresolved).
			Build()
	}

	return order, nil
}
