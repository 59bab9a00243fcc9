package agent

import "math"

// adam is a standard Adam optimizer over a flattened parameter vector.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64

	step int
	m    []float64
	v    []float64
}

func newAdam(lr float64, paramCount int) *adam {
	return &adam{
		lr:      lr,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-8,
		m:       make([]float64, paramCount),
		v:       make([]float64, paramCount),
	}
}

// apply performs one bias-corrected Adam step, writing updated values back
// into params.  params and grads share the flattened layout.
func (o *adam) apply(params, grads []float64) {
	o.step++
	bc1 := 1 - math.Pow(o.beta1, float64(o.step))
	bc2 := 1 - math.Pow(o.beta2, float64(o.step))

	for i, g := range grads {
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*g
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*g*g

		mHat := o.m[i] / bc1
		vHat := o.v[i] / bc2
		params[i] -= o.lr * mHat / (math.Sqrt(vHat) + o.epsilon)
	}
}

//Personal.AI order the ending
