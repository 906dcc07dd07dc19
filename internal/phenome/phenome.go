package phenome

import "sort"

// Input is one problem assignment: a vector of machine words.
type Input []uint64

// key makes Input comparable for use as a map key (Go slices cannot be map
// keys directly).
func (in Input) key() string {
	b := make([]byte, 0, len(in)*8)
	for _, w := range in {
		for i := 0; i < 8; i++ {
			b = append(b, byte(w>>(8*uint(i))))
		}
	}
	return string(b)
}

// Phenome maps each Input a creature has been posed with to its Pod, once
// hatched. Keys are installed by the seeder (problem assignment); values are
// filled in by the hatchery.
type Phenome struct {
	inputs map[string]Input
	pods   map[string]*Pod
}

// NewPhenome returns an empty Phenome.
func NewPhenome() Phenome {
	return Phenome{inputs: map[string]Input{}, pods: map[string]*Pod{}}
}

// Pose installs input as a problem to solve, with no Pod yet (None).
func (p *Phenome) Pose(input Input) {
	k := input.key()
	p.inputs[k] = input
	if _, ok := p.pods[k]; !ok {
		p.pods[k] = nil
	}
}

// Install records the Pod observed for input.
func (p *Phenome) Install(input Input, pod Pod) {
	k := input.key()
	p.inputs[k] = input
	pod2 := pod
	p.pods[k] = &pod2
}

// Inputs returns the posed inputs, in a stable (sorted-key) order.
func (p Phenome) Inputs() []Input {
	keys := make([]string, 0, len(p.inputs))
	for k := range p.inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Input, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.inputs[k])
	}
	return out
}

// Pod returns the Pod observed for input, if any.
func (p Phenome) Pod(input Input) (Pod, bool) {
	pod, ok := p.pods[input.key()]
	if !ok || pod == nil {
		return Pod{}, false
	}
	return *pod, true
}

// Pods returns every non-None Pod currently recorded.
func (p Phenome) Pods() []Pod {
	out := make([]Pod, 0, len(p.pods))
	for _, k := range p.sortedKeys() {
		if pod := p.pods[k]; pod != nil {
			out = append(out, *pod)
		}
	}
	return out
}

func (p Phenome) sortedKeys() []string {
	keys := make([]string, 0, len(p.inputs))
	for k := range p.inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasHatched holds when at least one installed Pod is non-None.
func (p Phenome) HasHatched() bool {
	for _, pod := range p.pods {
		if pod != nil {
			return true
		}
	}
	return false
}

// Clone deep-copies the map structure (Pods are copied by value).
func (p Phenome) Clone() Phenome {
	cp := NewPhenome()
	for k, in := range p.inputs {
		cp.inputs[k] = in
		if pod := p.pods[k]; pod != nil {
			podCopy := *pod
			cp.pods[k] = &podCopy
		} else {
			cp.pods[k] = nil
		}
	}
	return cp
}

// InheritProblems resets the phenome to the parent's posed inputs, each
// unhatched (None Pod) -- used when an offspring is born, per spec.md
// section 4.5: "Each offspring inherits the father's Input keys (with None
// Pods)".
func InheritProblems(parent Phenome) Phenome {
	cp := NewPhenome()
	for _, in := range parent.Inputs() {
		cp.Pose(in)
	}
	return cp
}
