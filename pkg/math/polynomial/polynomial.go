package polynomial

import (
	"errors"
	"io"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/math/sample"
)

var (
	// ErrDuplicateX is returned when two interpolation points share an x.
	ErrDuplicateX = errors.New("polynomial: duplicate x coordinate")
	// ErrPointsLength is returned when the x and y slices differ in length.
	ErrPointsLength = errors.New("polynomial: number of x and y coordinates differ")
	// ErrNoPoints is returned when interpolating over no points.
	ErrNoPoints = errors.New("polynomial: no points to interpolate")
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ.
type Polynomial struct {
	coefficients []curve.Scalar
}

// New generates a Polynomial f(X) = constant + a₁⋅X + … + aₜ⋅Xᵗ,
// with coefficients in ℤₚ sampled from rand, and degree t.
func New(degree int, constant *curve.Scalar, rand io.Reader) *Polynomial {
	var polynomial Polynomial
	polynomial.coefficients = make([]curve.Scalar, degree+1)

	// if the constant is nil, we interpret it as 0.
	if constant == nil {
		constant = curve.NewScalar()
	}
	polynomial.coefficients[0].Set(constant)

	for i := 1; i <= degree; i++ {
		polynomial.coefficients[i].Set(sample.Scalar(rand))
	}

	return &polynomial
}

// FromCoefficients returns the polynomial a₀ + a₁⋅X + … with the given coefficients.
// An empty slice gives the zero polynomial.
func FromCoefficients(coefficients []*curve.Scalar) *Polynomial {
	if len(coefficients) == 0 {
		return &Polynomial{coefficients: make([]curve.Scalar, 1)}
	}
	p := &Polynomial{coefficients: make([]curve.Scalar, len(coefficients))}
	for i, c := range coefficients {
		p.coefficients[i].Set(c)
	}
	return p
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index *curve.Scalar) *curve.Scalar {
	result := curve.NewScalar()
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.MultiplyAdd(result, index, &p.coefficients[i])
	}
	return result
}

// Constant returns a reference to the constant coefficient of the polynomial.
func (p *Polynomial) Constant() *curve.Scalar {
	return &p.coefficients[0]
}

// Coefficients returns copies of a₀, …, aₜ.
func (p *Polynomial) Coefficients() []*curve.Scalar {
	out := make([]*curve.Scalar, len(p.coefficients))
	for i := range p.coefficients {
		out[i] = p.coefficients[i].Clone()
	}
	return out
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(len(p.coefficients)) - 1
}

// Interpolate returns the unique polynomial of degree at most len(xs)-1
// passing through every (xs[i], ys[i]).
func Interpolate(xs, ys []*curve.Scalar) (*Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, ErrPointsLength
	}
	if len(xs) == 0 {
		return nil, ErrNoPoints
	}
	n := len(xs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if xs[i].Equal(xs[j]) {
				return nil, ErrDuplicateX
			}
		}
	}

	result := make([]curve.Scalar, n)
	for j := 0; j < n; j++ {
		// basis = ∏ₖ≠ⱼ (X - xₖ), denominator = ∏ₖ≠ⱼ (xⱼ - xₖ)
		basis := make([]curve.Scalar, 1, n)
		basis[0].SetUInt32(1)
		denominator := curve.NewScalarUInt32(1)
		tmp := curve.NewScalar()
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			basis = mulLinear(basis, xs[k])
			denominator.Multiply(denominator, tmp.Subtract(xs[j], xs[k]))
		}
		factor := curve.NewScalar().Invert(denominator)
		factor.Multiply(factor, ys[j])
		for i := range basis {
			result[i].MultiplyAdd(&basis[i], factor, &result[i])
		}
	}
	return &Polynomial{coefficients: result}, nil
}

// mulLinear returns p(X)⋅(X - root).
func mulLinear(p []curve.Scalar, root *curve.Scalar) []curve.Scalar {
	out := make([]curve.Scalar, len(p)+1)
	minusRoot := curve.NewScalar().Negate(root)
	for i := range p {
		// X⋅aᵢXⁱ contributes to degree i+1, -root⋅aᵢXⁱ to degree i
		out[i+1].Add(&out[i+1], &p[i])
		out[i].MultiplyAdd(&p[i], minusRoot, &out[i])
	}
	return out
}
