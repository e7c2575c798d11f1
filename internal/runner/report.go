package runner

import (
	"strings"

	"tortuga/internal/flow"
	"tortuga/internal/util"
)

// Report formats a failure with the source lines around it. src is used when
// the result carries no parsed program, which is the case for parse failures.
func Report(res Result, src string) string {
	if res.Err == nil {
		return ""
	}
	msg := res.Err.Error()
	sig, ok := flow.As(res.Err)
	if !ok || sig.Line == 0 {
		return msg
	}
	if res.Global != nil && len(res.Global.Modules) > 0 {
		src = res.Global.Source(sig.Proc)
	}
	context := util.GetContextLines(src, sig.Line)
	if context == "" {
		return msg
	}
	return msg + "\n" + strings.TrimRight(context, "\n")
}
