package order

// Filter restricts which orders are displayed. The zero value is invalid;
// use FilterAll.
type Filter string

const FilterAll Filter = "All"

// Filters lists the selectable filters, All first.
func Filters() []Filter {
	out := []Filter{FilterAll}
	for _, s := range Statuses() {
		out = append(out, Filter(s))
	}
	return out
}

func ParseFilter(raw string) (Filter, error) {
	if raw == "" || raw == string(FilterAll) {
		return FilterAll, nil
	}
	if !Status(raw).IsValid() {
		return "", ErrInvalidFilter
	}
	return Filter(raw), nil
}

// Matches reports whether an order with status s passes the filter.
func (f Filter) Matches(s Status) bool {
	return f == FilterAll || Status(f) == s
}

// Apply returns the orders passing the filter in their original order.
// The input slice is never modified.
func (f Filter) Apply(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

// Next cycles to the following filter, wrapping to All.
func (f Filter) Next() Filter {
	all := Filters()
	for i, v := range all {
		if v == f {
			return all[(i+1)%len(all)]
		}
	}
	return FilterAll
}
