package schema

// Kind identifies a directive kind recognized as an x-* annotation in the schema.
// The declaration order is the deterministic tie-break order used when batching
// independent directives into a processing stage.
type Kind int

const (
	KindFrontmatterPart Kind = iota
	KindExtractFrom
	KindJmespathFilter
	KindMergeArrays
	KindDerivedFrom
	KindDerivedUnique
	KindFlattenArrays
	KindTemplate
	KindTemplateItems

	kindCount
)

// annotation keys as they appear in schema files (bit-exact contract).
const (
	keyFrontmatterPart = "x-frontmatter-part"
	keyExtractFrom     = "x-extract-from"
	keyJmespathFilter  = "x-jmespath-filter"
	keyMergeArrays     = "x-merge-arrays"
	keyDerivedFrom     = "x-derived-from"
	keyDerivedUnique   = "x-derived-unique"
	keyFlattenArrays   = "x-flatten-arrays"
	keyTemplate        = "x-template"
	keyTemplateItems   = "x-template-items"
)

var kindKeys = [kindCount]string{
	KindFrontmatterPart: keyFrontmatterPart,
	KindExtractFrom:     keyExtractFrom,
	KindJmespathFilter:  keyJmespathFilter,
	KindMergeArrays:     keyMergeArrays,
	KindDerivedFrom:     keyDerivedFrom,
	KindDerivedUnique:   keyDerivedUnique,
	KindFlattenArrays:   keyFlattenArrays,
	KindTemplate:        keyTemplate,
	KindTemplateItems:   keyTemplateItems,
}

// String returns the annotation key for the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindKeys[k]
}

// Valid reports whether k is a recognized directive kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// AllKinds returns every directive kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindForKey maps an annotation key to its directive kind.
func KindForKey(key string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindKeys[k] == key {
			return k, true
		}
	}
	return 0, false
}
