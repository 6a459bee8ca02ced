package phrase

// seedCatalogue is the built-in rebuttal phrase set. Learned phrases extend
// it; they never replace a built-in (the repository keeps the built-in on a
// case-insensitive collision).
var seedCatalogue = map[string][]string{
	CategoryOtherProperty: {
		"do you have any other property you might want to sell",
		"do you own any other properties",
		"any other property you would consider selling",
		"do you have another house you want to sell",
		"what about any other real estate you own",
		"anyone in your family looking to sell a property",
		"do you know anyone who wants to sell their house",
		"any family member with a property to sell",
		"maybe a friend or relative selling their home",
	},
	CategoryFutureConsider: {
		"would you consider selling in the future",
		"maybe down the road you would sell",
		"if things change would you think about selling",
		"keep us in mind if you ever decide to sell",
		"sometime in the future when you are ready to sell",
		"circumstances change so think about it",
		"maybe next year you might consider it",
		"if you ever change your mind about selling",
	},
	CategoryCallbackSchedule: {
		"can i give you a call back next week",
		"when would be a good time to call you back",
		"can we schedule a callback",
		"i can follow up with you next month",
		"would it be okay if i check back with you later",
		"let me call you back at a better time",
		"can i reach out again in a few months",
	},
	CategoryWouldConsider: {
		"would you consider an offer",
		"would you take a cash offer",
		"what price would make you consider selling",
		"is there a number that would change your mind",
		"would you entertain an offer on the property",
		"if the price was right would you sell",
	},
	CategoryWeBuyOffer: {
		"we buy houses in any condition",
		"we can make you a cash offer today",
		"we pay cash and close quickly",
		"no repairs needed we buy as is",
		"we cover all closing costs",
		"we can close on your timeline",
	},
	CategoryFlexibleConvenient: {
		"we can work around your schedule",
		"whatever is most convenient for you",
		"we are flexible on the closing date",
		"you pick the date that works for you",
		"we make the process easy and convenient",
	},
	CategoryMixedFutureOther: {
		"if not now maybe in the future or another property",
		"keep us in mind for this or any other property",
		"whenever you or someone you know is ready to sell",
		"now or later this property or another one",
	},
}

// Seed returns a copy of the built-in catalogue keyed by category.
func Seed() map[string][]string {
	out := make(map[string][]string, len(seedCatalogue))
	for cat, phrases := range seedCatalogue {
		cp := make([]string, len(phrases))
		copy(cp, phrases)
		out[cat] = cp
	}
	return out
}
