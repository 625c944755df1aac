package unionspec

import "github.com/thorn-jmh/errorst"

var (
	ErrWrongSyntax      = errorst.NewError("Syntax Error!")
	ErrUnsupportedType  = errorst.NewError("unsupported type for variant identifier")
	ErrDuplicateVariant = errorst.NewError("duplicate variant")
	ErrBadWrapper       = errorst.NewError("invalid wrapper struct")
)
