package sparse

import "github.com/pkg/errors"

var (
	ErrBadShape          = errors.New("sparse: invalid shape")
	ErrOutOfRange        = errors.New("sparse: index out of range")
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")
	ErrNonNumeric        = errors.New("sparse: non-numeric value")
	ErrBadCellKey        = errors.New("sparse: malformed cell key")
)

const (
	opNew       = "New"
	opSet       = "Set"
	opAdd       = "Add"
	opMul       = "Mul"
	opFromEntry = "FromEntries"
)

func opErrorf(op string, err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, op+": "+format, args...)
}
