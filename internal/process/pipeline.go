package process

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Step is one processing operation with its arguments. It is the unit the
// CLI, the HTTP API and config files describe pipelines in.
type Step struct {
	Op      string       `yaml:"op" json:"op"`
	Column  string       `yaml:"column,omitempty" json:"column,omitempty"`
	Method  string       `yaml:"method,omitempty" json:"method,omitempty"`
	Value   string       `yaml:"value,omitempty" json:"value,omitempty"`
	Options []TextOption `yaml:"options,omitempty" json:"options,omitempty"`
}

// Step operation names.
const (
	OpDedupe      = "dedupe"
	OpDropEmpty   = "drop-empty"
	OpFill        = "fill"
	OpConvert     = "convert"
	OpFilter      = "filter"
	OpCleanText   = "clean-text"
	OpProcessText = "process-text"
)

// ParseStep reads the compact form used on the command line:
//
//	dedupe
//	drop-empty
//	fill:Mean            fill:Custom Value:0
//	convert:price:Float
//	filter:price:Greater Than:10
//	clean-text:title:Remove HTML,Lowercase
//	process-text:Remove URLs,Remove Extra Spaces
func ParseStep(s string) (Step, error) {
	parts := strings.Split(s, ":")
	st := Step{Op: strings.TrimSpace(parts[0])}
	args := parts[1:]
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("step %q needs %d argument(s)", st.Op, n)
		}
		return nil
	}
	switch st.Op {
	case OpDedupe, OpDropEmpty:
	case OpFill:
		if err := need(1); err != nil {
			return Step{}, err
		}
		st.Method = args[0]
		if len(args) > 1 {
			st.Value = strings.Join(args[1:], ":")
		}
	case OpConvert:
		if err := need(2); err != nil {
			return Step{}, err
		}
		st.Column, st.Method = args[0], args[1]
	case OpFilter:
		if err := need(3); err != nil {
			return Step{}, err
		}
		st.Column, st.Method, st.Value = args[0], args[1], strings.Join(args[2:], ":")
	case OpCleanText:
		if err := need(2); err != nil {
			return Step{}, err
		}
		st.Column = args[0]
		st.Options = splitOptions(args[1])
	case OpProcessText:
		if err := need(1); err != nil {
			return Step{}, err
		}
		st.Options = splitOptions(args[0])
	default:
		return Step{}, fmt.Errorf("unknown processing step %q", st.Op)
	}
	return st, nil
}

func splitOptions(s string) []TextOption {
	var out []TextOption
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, TextOption(o))
		}
	}
	return out
}

// Apply runs one step.
func (s Step) Apply(r result.Result) (result.Result, error) {
	switch s.Op {
	case OpDedupe:
		return RemoveDuplicates(r), nil
	case OpDropEmpty:
		return RemoveEmptyRows(r), nil
	case OpFill:
		return FillMissing(r, FillMethod(s.Method), s.Value), nil
	case OpConvert:
		return ConvertType(r, s.Column, TargetType(s.Method)), nil
	case OpFilter:
		return Filter(r, s.Column, FilterOp(s.Method), s.Value), nil
	case OpCleanText:
		return CleanText(r, s.Column, s.Options), nil
	case OpProcessText:
		if r.Kind != result.KindText && r.Kind != result.KindScalar {
			return r, nil
		}
		r.Text = ProcessText(r.Text, s.Options)
		return r, nil
	}
	return r, fmt.Errorf("unknown processing step %q", s.Op)
}

// Run applies steps in order and stops at the first error.
func Run(r result.Result, steps []Step) (result.Result, error) {
	for _, s := range steps {
		var err error
		if r, err = s.Apply(r); err != nil {
			return r, err
		}
	}
	return r, nil
}
