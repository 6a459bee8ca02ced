// Package phrase holds the rebuttal phrase catalogue: a built-in seed set
// grouped by category plus approved learned phrases loaded from the store.
//
// The catalogue is served to the matcher as an immutable snapshot (phrases +
// embeddings) swapped atomically on refresh, so detection readers never
// block on approvals and never observe a half-built index.
package phrase

// Rebuttal categories. The seed catalogue uses only these; learned phrases
// may introduce new categories, which the repository passes through
// unchanged.
const (
	CategoryOtherProperty      = "OTHER_PROPERTY_FAMILY"
	CategoryFutureConsider     = "FUTURE_CONSIDERATION"
	CategoryCallbackSchedule   = "CALLBACK_SCHEDULE"
	CategoryWouldConsider      = "WOULD_CONSIDER"
	CategoryWeBuyOffer         = "WE_BUY_OFFER"
	CategoryFlexibleConvenient = "FLEXIBLE_CONVENIENT"
	CategoryMixedFutureOther   = "MIXED_FUTURE_OTHER"

	// CategoryLLMComplexCase marks matches produced by the LLM tier rather
	// than the phrase catalogue.
	CategoryLLMComplexCase = "LLAMA_COMPLEX_CASE"
)

// SeedCategories lists the built-in categories in catalogue order.
var SeedCategories = []string{
	CategoryOtherProperty,
	CategoryFutureConsider,
	CategoryCallbackSchedule,
	CategoryWouldConsider,
	CategoryWeBuyOffer,
	CategoryFlexibleConvenient,
	CategoryMixedFutureOther,
}
