package wir

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: ""},
		{name: "string passthrough", value: "(a + 2)", expected: "(a + 2)"},
		{name: "bool true", value: true, expected: "true"},
		{name: "bool false", value: false, expected: "false"},
		{name: "int64", value: int64(42), expected: "42"},
		{name: "float", value: float64(0.3), expected: "0.3"},
		{name: "float whole", value: float64(0), expected: "0.0"},
		{name: "float exponent", value: float64(1e-07), expected: "1e-07"},
		{name: "decimal", value: decimal.NewFromFloat(4.2), expected: "4.2"},
		{name: "complex", value: complex(1, 2), expected: "(1+2j)"},
		{name: "complex negative imag", value: complex(3, -4), expected: "(3-4j)"},
		{name: "pure imaginary", value: complex(0, 3), expected: "3j"},
		{name: "array", value: []any{int64(0), int64(0)}, expected: "[0, 0]"},
		{name: "nested array", value: []any{[]any{int64(1)}, "x"}, expected: "[[1], x]"},
		{name: "wire", value: WireName("a"), expected: "a"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, FormatValue(testCase.value))
		})
	}
}

func TestComplexString(t *testing.T) {
	t.Parallel()

	pure, err := NewComplexFromImag("3")
	require.NoError(t, err)
	require.Equal(t, "3j", pure.String())

	mixed := NewComplex(decimal.NewFromInt(1), decimal.NewFromInt(2))
	require.Equal(t, "(1+2j)", mixed.String())
	require.Equal(t, "(-1-2j)", mixed.Neg().String())
}

func TestComplexArithmetic(t *testing.T) {
	t.Parallel()

	a := NewComplex(decimal.NewFromInt(1), decimal.NewFromInt(2))
	b := NewComplex(decimal.NewFromInt(3), decimal.NewFromInt(-1))

	require.True(t, a.Add(b).Equal(NewComplex(decimal.NewFromInt(4), decimal.NewFromInt(1))))
	require.True(t, a.Sub(b).Equal(NewComplex(decimal.NewFromInt(-2), decimal.NewFromInt(3))))
	// (1+2i)(3-i) = 5+5i
	require.True(t, a.Mul(b).Equal(NewComplex(decimal.NewFromInt(5), decimal.NewFromInt(5))))

	q, err := a.Mul(b).Div(b)
	require.NoError(t, err)
	require.True(t, q.Equal(a))

	_, err = a.Div(Complex{})
	require.EqualError(t, err, "complex division by zero")
}

func TestComplexFromImagInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewComplexFromImag("nope")
	require.Error(t, err)
}

func TestConvertToFloats(t *testing.T) {
	t.Parallel()

	converted := ConvertToFloats([]any{
		decimal.NewFromFloat(0.5),
		NewComplex(decimal.NewFromInt(1), decimal.NewFromInt(2)),
		int64(7),
		"sym",
	})
	require.Equal(t, []any{float64(0.5), complex(1, 2), int64(7), "sym"}, converted)
}
