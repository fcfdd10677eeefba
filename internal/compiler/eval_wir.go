package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/wir"
)

// evaluator folds wirelang expressions into values. Arithmetic stays exact
// (int64, decimal, decimal-backed complex) until the program is converted to
// floats; anything involving a free variable or a function call folds into
// its symbolic spelling instead.
type evaluator struct {
	reporter exc.Reporter
	uri      string
	program  *wir.Program
	evalPi   bool
}

func (self *evaluator) report(loc wir.Location, code string, message string) {
	self.reporter.Report(exc.New(exc.Location{
		URI:      self.uri,
		Location: loc,
	}, code, message))
}

// numeric ranks for arithmetic promotion
const (
	rankInt = iota
	rankDecimal
	rankComplex
)

func numericRank(v any) (int, bool) {
	switch v.(type) {
	case int64:
		return rankInt, true
	case decimal.Decimal:
		return rankDecimal, true
	case wir.Complex:
		return rankComplex, true
	}
	return 0, false
}

func asDecimal(v any) decimal.Decimal {
	switch v := v.(type) {
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}

func asComplex(v any) wir.Complex {
	switch v := v.(type) {
	case int64:
		return wir.NewComplex(decimal.NewFromInt(v), decimal.Zero)
	case decimal.Decimal:
		return wir.NewComplex(v, decimal.Zero)
	case wir.Complex:
		return v
	}
	return wir.Complex{}
}

func (self *evaluator) eval(e expression) any {
	switch e := e.(type) {
	case astExpressionLiteral:
		return self.evalLiteral(e)
	case astExpressionName:
		self.program.AddVariable(e.name.Value)
		return e.name.Value
	case astExpressionCall:
		arg := self.eval(e.arg)
		if arg == nil {
			return nil
		}
		self.program.AddCalledFunction(e.name.Value)
		return fmt.Sprintf("%s(%s)", e.name.Value, wir.FormatValue(arg))
	case astExpressionUnary:
		return self.evalUnary(e)
	case astExpressionBinary:
		return self.evalBinary(e)
	case astExpressionArray:
		values := []any{}
		for _, element := range e.elements {
			v := self.eval(element)
			if v == nil {
				return nil
			}
			values = append(values, v)
		}
		return values
	}
	return nil
}

func (self *evaluator) evalLiteral(e astExpressionLiteral) any {
	switch e.token.Type {
	case wir.TokenTypeInteger:
		v, err := strconv.ParseInt(e.token.Value, 10, 64)
		if err != nil {
			self.report(e.token.Span.Start, exc.CodeInvalidNumber, fmt.Sprintf("invalid integer literal '%s'", e.token.Value))
			return nil
		}
		return v
	case wir.TokenTypeFloat:
		v, err := decimal.NewFromString(e.token.Value)
		if err != nil {
			self.report(e.token.Span.Start, exc.CodeInvalidNumber, fmt.Sprintf("invalid float literal '%s'", e.token.Value))
			return nil
		}
		return v
	case wir.TokenTypeImaginary:
		v, err := wir.NewComplexFromImag(strings.TrimSuffix(e.token.Value, "j"))
		if err != nil {
			self.report(e.token.Span.Start, exc.CodeInvalidNumber, fmt.Sprintf("invalid imaginary literal '%s'", e.token.Value))
			return nil
		}
		return v
	case wir.TokenTypeKeywordTrue:
		return true
	case wir.TokenTypeKeywordFalse:
		return false
	case wir.TokenTypeKeywordPi:
		if self.evalPi {
			return decimal.NewFromFloat(math.Pi)
		}
		return "PI"
	}
	self.report(e.token.Span.Start, exc.CodeInvalidExpression, fmt.Sprintf("unexpected literal '%s'", e.token.Value))
	return nil
}

func (self *evaluator) evalUnary(e astExpressionUnary) any {
	operand := self.eval(e.operand)
	if operand == nil {
		return nil
	}
	switch operand := operand.(type) {
	case int64:
		return -operand
	case decimal.Decimal:
		return operand.Neg()
	case wir.Complex:
		return operand.Neg()
	}
	return "-" + wir.FormatValue(operand)
}

func (self *evaluator) evalBinary(e astExpressionBinary) any {
	lhs := self.eval(e.lhs)
	if lhs == nil {
		return nil
	}
	rhs := self.eval(e.rhs)
	if rhs == nil {
		return nil
	}

	lrank, lok := numericRank(lhs)
	rrank, rok := numericRank(rhs)
	if !lok || !rok {
		return self.symbolic(e.op, lhs, rhs)
	}

	rank := lrank
	if rrank > rank {
		rank = rrank
	}

	switch e.op.Type {
	case wir.TokenTypePlus:
		switch rank {
		case rankInt:
			return lhs.(int64) + rhs.(int64)
		case rankDecimal:
			return asDecimal(lhs).Add(asDecimal(rhs))
		default:
			return asComplex(lhs).Add(asComplex(rhs))
		}
	case wir.TokenTypeMinus:
		switch rank {
		case rankInt:
			return lhs.(int64) - rhs.(int64)
		case rankDecimal:
			return asDecimal(lhs).Sub(asDecimal(rhs))
		default:
			return asComplex(lhs).Sub(asComplex(rhs))
		}
	case wir.TokenTypeStar:
		switch rank {
		case rankInt:
			return lhs.(int64) * rhs.(int64)
		case rankDecimal:
			return asDecimal(lhs).Mul(asDecimal(rhs))
		default:
			return asComplex(lhs).Mul(asComplex(rhs))
		}
	case wir.TokenTypeSlash:
		switch rank {
		case rankInt, rankDecimal:
			divisor := asDecimal(rhs)
			if divisor.IsZero() {
				self.report(e.op.Span.Start, exc.CodeInvalidExpression, "division by zero")
				return self.symbolic(e.op, lhs, rhs)
			}
			return asDecimal(lhs).Div(divisor)
		default:
			quotient, err := asComplex(lhs).Div(asComplex(rhs))
			if err != nil {
				self.report(e.op.Span.Start, exc.CodeInvalidExpression, err.Error())
				return self.symbolic(e.op, lhs, rhs)
			}
			return quotient
		}
	}
	self.report(e.op.Span.Start, exc.CodeInvalidExpression, fmt.Sprintf("unexpected operator '%s'", e.op.Value))
	return nil
}

// symbolic folds an operation that can not be computed into its spelling.
// Additive operations keep parentheses so precedence survives re-parsing.
func (self *evaluator) symbolic(op wir.Token, lhs any, rhs any) string {
	l := wir.FormatValue(lhs)
	r := wir.FormatValue(rhs)
	switch op.Type {
	case wir.TokenTypePlus:
		return fmt.Sprintf("(%s + %s)", l, r)
	case wir.TokenTypeMinus:
		return fmt.Sprintf("(%s - %s)", l, r)
	case wir.TokenTypeStar:
		return fmt.Sprintf("%s * %s", l, r)
	default:
		return fmt.Sprintf("%s / %s", l, r)
	}
}
