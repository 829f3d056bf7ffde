package fragment

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy names.
const (
	StrategyQuick    = "quick"
	StrategyFullScan = "fullscan"
)

var ErrUnknownStrategy = errors.New("unknown fragment strategy")

// Strategy is the shared contract of both checkers: does candidate look like it was built
// from fragments of reference (or vice versa)?
type Strategy interface {
	Name() string
	Match(candidate, reference string) bool
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(candidate, reference string) bool
}

func (f StrategyFunc) Name() string { return f.Label }

func (f StrategyFunc) Match(candidate, reference string) bool { return f.Fn(candidate, reference) }

// Strategies lists the registered strategy names.
func Strategies() []string {
	return []string{StrategyQuick, StrategyFullScan}
}

// StrategyByName resolves a strategy. opts configures the quick strategy and is ignored by
// the full scan. An empty name selects the quick strategy.
func StrategyByName(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyQuick:
		return NewQuickChecker(WithOptions(opts)), nil
	case StrategyFullScan, "full_scan", "full-scan":
		return NewFullScanChecker(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, name, strings.Join(Strategies(), ", "))
	}
}
