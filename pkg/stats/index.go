package stats

// Index holds the selectable domains of a dataset.
type Index struct {
	Years       []string
	Countries   []string
	RiskFactors []string
}

// NewIndex derives years and countries (distinct, in first-seen order) and
// the risk factor columns. Risk factors are the keys of the first record
// after its first two; later records are not checked against them.
func NewIndex(ds Dataset) (*Index, error) {
	if len(ds) == 0 {
		return nil, ErrEmptyDataset
	}

	idx := &Index{
		Years:     distinct(ds, Record.Year),
		Countries: distinct(ds, Record.Entity),
	}

	if keys := ds[0].Keys; len(keys) > 2 {
		idx.RiskFactors = append([]string(nil), keys[2:]...)
	} else {
		idx.RiskFactors = []string{}
	}

	return idx, nil
}

func distinct(ds Dataset, field func(Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range ds {
		v := field(r)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// HasYear etc. report whether a value belongs to the derived domain.
func (idx *Index) HasYear(v string) bool       { return contains(idx.Years, v) }
func (idx *Index) HasCountry(v string) bool    { return contains(idx.Countries, v) }
func (idx *Index) HasRiskFactor(v string) bool { return contains(idx.RiskFactors, v) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
