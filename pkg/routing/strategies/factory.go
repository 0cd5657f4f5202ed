package strategies

import "fmt"

// New resolves a configured selection_strategy name to a Strategy
// implementation (§6 settings table).
func New(name string) (Strategy, error) {
	switch name {
	case "", "priority":
		return NewPriorityStrategy(), nil
	case "round_robin":
		return NewRoundRobinStrategy(), nil
	case "random":
		return NewRandomStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}
