package review

import (
	"fmt"
	"strings"

	"numis-cli/internal/model"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled user filter expression over review items, e.g.
// `confidence > 0.8 && field == "grade"`.
type Filter struct {
	src     string
	program *vm.Program
}

func filterEnv(it model.ReviewItem) map[string]any {
	return map[string]any{
		"id":         it.ID,
		"tab":        string(it.Tab),
		"coinId":     it.CoinID,
		"field":      it.Field,
		"current":    it.CurrentValue,
		"suggested":  it.SuggestedValue,
		"confidence": it.Confidence,
		"source":     it.Source,
	}
}

// CompileFilter compiles src once; compile errors are reported here, not per
// item.
func CompileFilter(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	program, err := expr.Compile(src,
		expr.Env(filterEnv(model.ReviewItem{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", src, err)
	}
	return &Filter{src: src, program: program}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}

func (f *Filter) Match(it model.ReviewItem) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(it))
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.src, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q: expected boolean result, got %T", f.src, out)
	}
	return keep, nil
}

// ApplyFilter returns the items matching f (all items when f is nil).
func ApplyFilter(items []model.ReviewItem, f *Filter) ([]model.ReviewItem, error) {
	if f == nil {
		return items, nil
	}
	out := make([]model.ReviewItem, 0, len(items))
	for _, it := range items {
		keep, err := f.Match(it)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, it)
		}
	}
	return out, nil
}
