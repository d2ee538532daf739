package pricing

// FlatRate charges the same shipping regardless of weight, destination or
// item count.
type FlatRate struct {
	Cents int64
}

func (f FlatRate) Cost() int64 {
	return f.Cents
}
