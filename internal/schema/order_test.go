package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

func TestComputeOrderDependenciesPrecede(t *testing.T) {
	detected := []Kind{KindDerivedUnique, KindDerivedFrom, KindFrontmatterPart, KindFlattenArrays}

	order, err := ComputeOrder(detected)
	require.NoError(t, err)

	pos := make(map[Kind]int, len(order.Sequence))
	for i, k := range order.Sequence {
		pos[k] = i
	}
	require.Len(t, pos, len(detected), "no detected kind may be dropped from the order")

	for _, k := range detected {
		for _, dep := range DependenciesOf(k) {
			if _, present := pos[dep]; !present {
				continue
			}
			assert.Less(t, pos[dep], pos[k], "%s must precede %s", dep, k)
		}
	}
}

func TestComputeOrderStageBatching(t *testing.T) {
	order, err := ComputeOrder([]Kind{KindFrontmatterPart, KindExtractFrom, KindDerivedFrom, KindDerivedUnique})
	require.NoError(t, err)

	// frontmatter-part and extract-from are independent and share the first
	// stage; derived-from waits for frontmatter-part; derived-unique waits for
	// derived-from.
	require.Len(t, order.Stages, 3)
	assert.Equal(t, []Kind{KindFrontmatterPart, KindExtractFrom}, order.Stages[0])
	assert.Equal(t, []Kind{KindDerivedFrom}, order.Stages[1])
	assert.Equal(t, []Kind{KindDerivedUnique}, order.Stages[2])
}

func TestComputeOrderDeterministic(t *testing.T) {
	detected := []Kind{KindFlattenArrays, KindJmespathFilter, KindFrontmatterPart, KindMergeArrays}

	first, err := ComputeOrder(detected)
	require.NoError(t, err)
	second, err := ComputeOrder(detected)
	require.NoError(t, err)

	assert.Equal(t, first.Sequence, second.Sequence)
	assert.Equal(t, first.Stages, second.Stages)
}

func TestComputeOrderMissingDependencyIgnored(t *testing.T) {
	// derived-from depends on frontmatter-part, but when frontmatter-part was
	// never detected the edge is ignored rather than treated as unsatisfiable.
	order, err := ComputeOrder([]Kind{KindDerivedFrom, KindDerivedUnique})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindDerivedFrom, KindDerivedUnique}, order.Sequence)
}

func TestComputeOrderEmpty(t *testing.T) {
	order, err := ComputeOrder(nil)
	require.NoError(t, err)
	assert.True(t, order.Empty())
}

func TestComputeOrderCycleDetection(t *testing.T) {
	// The production table is acyclic; inject a cycle to exercise detection.
	original := dependencies
	dependencies = map[Kind][]Kind{
		KindDerivedFrom:     {KindFrontmatterPart},
		KindFrontmatterPart: {KindDerivedFrom},
	}
	defer func() { dependencies = original }()

	_, err := ComputeOrder([]Kind{KindFrontmatterPart, KindDerivedFrom})
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryCyclicDependency))
	assert.Contains(t, err.Error(), "x-frontmatter-part")
	assert.Contains(t, err.Error(), "x-derived-from")
}

func TestSupportedKinds(t *testing.T) {
	kinds := SupportedKinds()
	require.Len(t, kinds, int(kindCount))
	assert.Equal(t, KindFrontmatterPart, kinds[0])
	assert.Equal(t, KindTemplateItems, kinds[len(kinds)-1])
}
