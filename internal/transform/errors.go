package transform

import "fmt"

// InvalidDirectiveError 非法的变换指令
// 在解码任何像素之前的校验阶段产生，原样返回给调用方，不重试。
type InvalidDirectiveError struct {
	Reason string
}

func (e *InvalidDirectiveError) Error() string {
	return fmt.Sprintf("invalid transformation directive: %s", e.Reason)
}

// ProcessingError 流水线阶段失败
// 任何阶段失败都会中止整条流水线，不返回部分结果。
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("image processing failed at stage '%s': %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func invalidDirectivef(format string, args ...interface{}) error {
	return &InvalidDirectiveError{Reason: fmt.Sprintf(format, args...)}
}

func processingErr(stage string, err error) error {
	return &ProcessingError{Stage: stage, Err: err}
}
