package vm

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// CommonLogSink adapts a commonlog.Logger into a TraceSink, so DEBUG
// opcodes flow through the same structured-logging pipeline as the rest
// of the runtime instead of straight to stdout.
type CommonLogSink struct {
	Logger commonlog.Logger
}

// NewCommonLogSink builds a sink logging under the given commonlog name.
func NewCommonLogSink(name string) CommonLogSink {
	return CommonLogSink{Logger: commonlog.GetLogger(name)}
}

func (c CommonLogSink) Trace(f *Frame, message string) {
	if c.Logger == nil {
		return
	}
	mid := ""
	if f != nil {
		mid = fmt.Sprintf("sym#%d", f.Proc.Name)
	}
	c.Logger.Debugf("%s: %s", mid, message)
}
