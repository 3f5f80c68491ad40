package story

import (
	"errors"
	"fmt"
	"strings"
)

// Walk visits every state reachable from root through successor and
// sub-step links, once each, in depth-first declaration order.
func Walk(root *State, fn func(*State)) {
	seen := make(map[*State]bool)
	var visit func(*State)
	visit = func(s *State) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		fn(s)
		for _, sub := range s.subSteps {
			visit(sub)
		}
		for _, next := range s.successors {
			visit(next)
		}
	}
	visit(root)
}

// Validate checks a graph before it is run. It reports builder misuse
// recorded on any reachable state, sub-step cycles (a state reachable from
// itself through sub-step links, which includes a root nested under itself)
// and sub-steps that declare successors. All problems are joined into one
// error.
func Validate(root *State) error {
	if root == nil {
		return &GraphConstructionError{State: "<root>", Err: ErrNilState}
	}

	var errs []error
	subOf := make(map[*State]bool)
	Walk(root, func(s *State) {
		errs = append(errs, s.errs...)
		for _, sub := range s.subSteps {
			subOf[sub] = true
		}
	})

	Walk(root, func(s *State) {
		if subOf[s] && len(s.successors) > 0 {
			errs = append(errs, &GraphConstructionError{State: s.Name, Err: ErrSubStepSuccessor})
		}
	})

	const (
		white = iota
		grey
		black
	)
	color := make(map[*State]int)
	var visit func(s *State, path []string)
	visit = func(s *State, path []string) {
		color[s] = grey
		path = append(path, s.Name)
		for _, sub := range s.subSteps {
			switch color[sub] {
			case grey:
				errs = append(errs, &GraphConstructionError{
					State: sub.Name,
					Err:   fmt.Errorf("%w: %s -> %s", ErrSubStepCycle, strings.Join(path, " -> "), sub.Name),
				})
			case white:
				visit(sub, path)
			}
		}
		color[s] = black
	}
	Walk(root, func(s *State) {
		if color[s] == white {
			visit(s, nil)
		}
	})

	return errors.Join(errs...)
}

// Dump renders the graph reachable from root as an indented outline. A
// state that has already been printed is shown by name only, so cyclic
// graphs terminate. Two graphs built the same way dump identically.
func Dump(root *State) string {
	var b strings.Builder
	seen := make(map[*State]bool)
	var write func(s *State, depth int, role string)
	write = func(s *State, depth int, role string) {
		pad := strings.Repeat("  ", depth)
		if seen[s] {
			fmt.Fprintf(&b, "%s%s%s (see above)\n", pad, role, s)
			return
		}
		seen[s] = true
		fmt.Fprintf(&b, "%s%s%s\n", pad, role, s)
		for _, c := range s.conditions {
			fmt.Fprintf(&b, "%s  if %s\n", pad, c)
		}
		for _, a := range s.actions {
			fmt.Fprintf(&b, "%s  do %s\n", pad, a)
		}
		for _, a := range s.exit {
			fmt.Fprintf(&b, "%s  on exit %s\n", pad, a)
		}
		for _, sub := range s.subSteps {
			write(sub, depth+1, "sub ")
		}
		for _, next := range s.successors {
			write(next, depth+1, "-> ")
		}
	}
	if root != nil {
		write(root, 0, "")
	}
	return b.String()
}
