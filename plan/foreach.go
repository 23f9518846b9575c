package plan

import (
	"context"
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrForeachShape is the runtime taxonomy entry for a FOREACH whose outer
// projection is missing, has more than one item, or is not a JSON array.
var ErrForeachShape = goerrors.NewKind("%s")

// ForeachPlan composes two compiled SelectPlans: Outer extracts the array
// to iterate and evaluates the outer WHERE guard; Inner is evaluated once
// per array element, rooted at that element.
type ForeachPlan struct {
	Outer *SelectPlan
	Inner *SelectPlan
}

func (p *ForeachPlan) Type() string { return "FOREACH" }

func (p *ForeachPlan) String() string {
	s := "ForeachPlan{\n  outer: "
	s += p.Outer.String()
	s += "  inner: "
	s += p.Inner.String()
	s += "}\n"
	return s
}

// Execute evaluates the outer plan, short-circuits to an empty Nested
// result if its WHERE guard is falsy, verifies the single
// outer projection is a JSON array, then evaluates the inner plan once
// per element. Per-element errors are captured as an Err row and never
// abort the remaining iteration.
func (p *ForeachPlan) Execute(ctx context.Context, input interface{}) (*Result, error) {
	outer, err := p.Outer.Execute(ctx, input)
	if err != nil {
		return nil, err
	}

	if outer.HasCond && isFalsy(outer.Cond) {
		return &Result{Kind: KindNested, HasCond: true, Cond: outer.Cond}, nil
	}

	if len(outer.Pairs) != 1 {
		return nil, ErrForeachShape.New(fmt.Sprintf("foreach outer projection must have exactly one item, got %d", len(outer.Pairs)))
	}
	arr, ok := outer.Pairs[0].Value.([]interface{})
	if !ok {
		return nil, ErrForeachShape.New("foreach must return array")
	}

	result := &Result{Kind: KindNested, HasCond: outer.HasCond, Cond: outer.Cond}
	for _, elem := range arr {
		inner, err := p.Inner.Execute(ctx, elem)
		if err != nil {
			result.Rows = append(result.Rows, RowResult{Err: err})
			continue
		}
		result.Rows = append(result.Rows, RowResult{Result: inner})
	}
	return result, nil
}

// isFalsy reports whether v is the JSON boolean false or JSON null — any
// other value (true, a number, a string) lets iteration proceed.
func isFalsy(v interface{}) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}
