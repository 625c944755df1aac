package uniongen

import "github.com/thorn-jmh/errorst"

var (
	ErrParamConflict = errorst.NewError("conflicting type parameters")
	ErrEmitFail      = errorst.NewError("failed to emit generated code")
)
