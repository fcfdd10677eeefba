package wir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Complex is an exact complex number built from two decimals. It is the
// in-memory form of imaginary literals and of arithmetic involving them
// when float conversion is disabled.
type Complex struct {
	Real decimal.Decimal
	Imag decimal.Decimal
}

func NewComplex(re decimal.Decimal, im decimal.Decimal) Complex {
	return Complex{Real: re, Imag: im}
}

// NewComplexFromImag builds a pure imaginary value from the digits of an
// imaginary literal, without the trailing j.
func NewComplexFromImag(digits string) (Complex, error) {
	im, err := decimal.NewFromString(digits)
	if err != nil {
		return Complex{}, errors.Wrapf(err, "invalid imaginary literal '%sj'", digits)
	}
	return Complex{Imag: im}, nil
}

func (c Complex) Add(o Complex) Complex {
	return Complex{Real: c.Real.Add(o.Real), Imag: c.Imag.Add(o.Imag)}
}

func (c Complex) Sub(o Complex) Complex {
	return Complex{Real: c.Real.Sub(o.Real), Imag: c.Imag.Sub(o.Imag)}
}

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Real: c.Real.Mul(o.Real).Sub(c.Imag.Mul(o.Imag)),
		Imag: c.Real.Mul(o.Imag).Add(c.Imag.Mul(o.Real)),
	}
}

func (c Complex) Div(o Complex) (Complex, error) {
	denom := o.Real.Mul(o.Real).Add(o.Imag.Mul(o.Imag))
	if denom.IsZero() {
		return Complex{}, errors.New("complex division by zero")
	}
	return Complex{
		Real: c.Real.Mul(o.Real).Add(c.Imag.Mul(o.Imag)).Div(denom),
		Imag: c.Imag.Mul(o.Real).Sub(c.Real.Mul(o.Imag)).Div(denom),
	}, nil
}

func (c Complex) Neg() Complex {
	return Complex{Real: c.Real.Neg(), Imag: c.Imag.Neg()}
}

func (c Complex) IsZero() bool {
	return c.Real.IsZero() && c.Imag.IsZero()
}

func (c Complex) Equal(o Complex) bool {
	return c.Real.Equal(o.Real) && c.Imag.Equal(o.Imag)
}

func (c Complex) Complex128() complex128 {
	return complex(c.Real.InexactFloat64(), c.Imag.InexactFloat64())
}

// String renders pure imaginary values as 2j and mixed values in the
// parenthesized (re+imj) form so they read back as an expression.
func (c Complex) String() string {
	if c.Real.IsZero() {
		return c.Imag.String() + "j"
	}
	if c.Imag.IsNegative() {
		return "(" + c.Real.String() + "-" + c.Imag.Neg().String() + "j)"
	}
	return "(" + c.Real.String() + "+" + c.Imag.String() + "j)"
}

// FormatValue renders any value from the wirelang domain (parameter values,
// option and constant values, observable prefactors) in its canonical text
// form. Symbolic expressions are already strings and pass through untouched.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case decimal.Decimal:
		return t.String()
	case Complex:
		return t.String()
	case float64:
		return formatFloat(t)
	case complex128:
		return formatComplex128(t)
	case Wire:
		return t.String()
	case []any:
		elems := make([]string, len(t))
		for i, e := range t {
			elems[i] = FormatValue(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatValues joins the canonical forms of the given values with commas.
func FormatValues(vs []any) string {
	elems := make([]string, len(vs))
	for i, v := range vs {
		elems[i] = FormatValue(v)
	}
	return strings.Join(elems, ", ")
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatComplex128(c complex128) string {
	re := real(c)
	im := imag(c)
	if re == 0 {
		return strconv.FormatFloat(im, 'g', -1, 64) + "j"
	}
	sign := "+"
	if im < 0 {
		sign = "-"
		im = -im
	}
	return "(" + strconv.FormatFloat(re, 'g', -1, 64) + sign + strconv.FormatFloat(im, 'g', -1, 64) + "j)"
}

// ConvertToFloats lowers exact numerics into machine types. Decimals become
// float64 and Complex becomes complex128. Arrays are converted element-wise
// and every other value is returned unchanged.
func ConvertToFloats(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case Complex:
		return t.Complex128()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ConvertToFloats(e)
		}
		return out
	default:
		return v
	}
}
