package domain

type Category string

const (
	CategoryMinimum   Category = "MinimumCandidate"
	CategoryPlus      Category = "PlusCandidate"
	CategoryUnicorn   Category = "UnicornCandidate"
	CategoryDiscarded Category = "Discarded"
)

func AllCategories() []Category {
	return []Category{CategoryMinimum, CategoryPlus, CategoryUnicorn, CategoryDiscarded}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryMinimum, CategoryPlus, CategoryUnicorn, CategoryDiscarded:
		return true
	default:
		return false
	}
}

// Classify applies the keyword ladder to already normalized text.
// PlusCandidate is never returned: any desired hit lands in UnicornCandidate.
func Classify(text string, required, desired KeywordSet) Category {
	if !required.AllIn(text) {
		return CategoryDiscarded
	}
	if desired.AnyIn(text) {
		return CategoryUnicorn
	}
	return CategoryMinimum
}
