package phenome

// Fitness is a non-empty vector of f32 fitness components, supporting
// multi-objective comparison. Grounded on
// original_source/src/gen/phenotype.rs's FitnessOps/Pareto traits.
type Fitness []float32

// Mean is the summary scalar used for display -- spec.md section 9 (ii)
// requires this path to be exposed alongside the multi-component Pareto
// path below.
func (f Fitness) Mean() float32 {
	if len(f) == 0 {
		return 0
	}
	var sum float32
	for _, x := range f {
		sum += x
	}
	return sum / float32(len(f))
}

// DominatedBy holds when, for every component, other[i] >= self[i] (Pareto
// domination). Mismatched lengths compare over the shorter vector's range.
func (f Fitness) DominatedBy(other Fitness) bool {
	n := len(f)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if f[i] > other[i] {
			return false
		}
	}
	return true
}

// StrictlyDominatedBy holds when other[i] > self[i] for every component --
// the strict form used by the breeder's Pareto front filter (spec.md
// section 4.5 step 3).
func (f Fitness) StrictlyDominatedBy(other Fitness) bool {
	n := len(f)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if other[i] <= f[i] {
			return false
		}
	}
	return true
}
