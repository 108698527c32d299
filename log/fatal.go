package log

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Errors that stop the process during startup.
var (
	ErrMalformedConfig = newFatalError("ERR_MALFORMED_CONFIG", "config file is malformed")
	ErrBadFlags        = newFatalError("ERR_BAD_FLAGS", "bad CLI flags")
	ErrEnsureDataDir   = newFatalError("ERR_ENSURE_DATA_DIR", "could not open/create data dir")
	ErrGenesis         = newFatalError("ERR_GENESIS", "could not apply genesis accounts")
)

// FatalError describes a startup failure with a stable code for operators.
type FatalError struct {
	Code   string
	Text   string
	Reason error
}

func newFatalError(code, text string) func(reason error) *FatalError {
	return func(reason error) *FatalError {
		return &FatalError{
			Code:   code,
			Text:   text,
			Reason: reason,
		}
	}
}

func (fe *FatalError) Error() string {
	if fe.Reason != nil {
		return fmt.Sprintf("%s: %v", fe.Text, fe.Reason)
	}
	return fe.Text
}

func (fe *FatalError) Unwrap() error {
	return fe.Reason
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (fe *FatalError) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("code", fe.Code)
	encoder.AddString("error", fe.Error())
	return nil
}
