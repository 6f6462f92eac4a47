package domain

// ListFilter is the common paging shape of entity listings. Soft-deleted
// rows are excluded unless IncludeDeleted is set.
type ListFilter struct {
	IncludeDeleted bool
	AfterID        string
	Limit          int
}

func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	return f
}

// SampleFilter narrows sample listings to a lab.
type SampleFilter struct {
	ListFilter
	LabID string
}

// ResultFilter narrows result listings to a sample and/or parameter.
type ResultFilter struct {
	ListFilter
	SampleID    string
	ParameterID string
}
