// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"gonum.org/v1/gonum/mat"
)

// The Newton system of the perturbed optimality conditions is
//
//	𝐀ᵀd𝐲 − d𝐳 = -𝐫𝐜     𝐫𝐜 = 𝐀ᵀ𝐲 − 𝐳 + 𝐜
//	𝐀d𝐱      = -𝐫𝐛     𝐫𝐛 = 𝐀𝐱 − 𝐛
//	𝐙d𝐱 + 𝐗d𝐳 = -𝐫μ     𝐫μ = 𝐱 ∘ 𝐳 − σμ𝟙
//
// and is posed in one of three symmetric shapes sharing this identity.
//
// Full (n+m+n, indefinite; complementarity row divided by −𝐳):
//
//	⎡ 0    𝐀ᵀ  −𝐈     ⎤ ⎡ d𝐱 ⎤   ⎡ −𝐫𝐜   ⎤
//	⎢ 𝐀    0    0     ⎥ ⎢ d𝐲 ⎥ = ⎢ −𝐫𝐛   ⎥
//	⎣ −𝐈   0   −𝐗𝐙⁻¹  ⎦ ⎣ d𝐳 ⎦   ⎣ 𝐫μ/𝐳  ⎦
//
// Augmented (n+m, quasi-definite; d𝐳 eliminated, valid since 𝐱 > 0):
//
//	⎡ 𝐗⁻¹𝐙  𝐀ᵀ ⎤ ⎡ d𝐱 ⎤   ⎡ −𝐫𝐜 − 𝐫μ/𝐱 ⎤      d𝐳 = −(𝐫μ + 𝐳∘d𝐱)/𝐱
//	⎣ 𝐀     0  ⎦ ⎣ d𝐲 ⎦ = ⎣ −𝐫𝐛        ⎦
//
// Normal (m, positive definite; d𝐱 eliminated through the 𝐗𝐙⁻¹ scaling):
//
//	𝐀𝐃𝐀ᵀ d𝐲 = 𝐫𝐛 + 𝐀((−𝐱∘𝐫𝐜 − 𝐫μ)/𝐳)   𝐃 = diag(𝐱/𝐳)
//	d𝐳 = 𝐫𝐜 + 𝐀ᵀd𝐲 ,  d𝐱 = −(𝐫μ + 𝐱∘d𝐳)/𝐳

// fullKKTRHS assembles d = (−𝐫𝐜, −𝐫𝐛, 𝐫μ/𝐳).
func fullKKTRHS(rc, rb, rmu, z, d []float64) {
	n, m := len(rc), len(rb)
	for i, v := range rc {
		d[i] = -v
	}
	for i, v := range rb {
		d[n+i] = -v
	}
	for i, v := range rmu {
		d[n+m+i] = v / z[i]
	}
}

// expandFull reads the direction triple straight out of the solved d.
func expandFull(m, n int, d, dx, dy, dz []float64) {
	copy(dx, d[:n])
	copy(dy, d[n:n+m])
	copy(dz, d[n+m:])
}

// augKKTRHS assembles d = (−𝐫𝐜 − 𝐫μ/𝐱, −𝐫𝐛).
func augKKTRHS(x, rc, rb, rmu, d []float64) {
	n := len(rc)
	for i, v := range rc {
		d[i] = -v - rmu[i]/x[i]
	}
	for i, v := range rb {
		d[n+i] = -v
	}
}

// expandAugmented recovers d𝐳 from the complementarity relation.
func expandAugmented(x, z, rmu, d, dx, dy, dz []float64) {
	n := len(x)
	copy(dx, d[:n])
	copy(dy, d[n:])
	for i := range dz {
		dz[i] = -(rmu[i] + z[i]*dx[i]) / x[i]
	}
}

// normalRHSWork computes the n-vector w = (−𝐱∘𝐫𝐜 − 𝐫μ)/𝐳 whose image under
// 𝐀, shifted by 𝐫𝐛, is the normal-equation right-hand side.
func normalRHSWork(x, z, rc, rmu, w []float64) {
	for i := range w {
		w[i] = (-x[i]*rc[i] - rmu[i]) / z[i]
	}
}

// expandNormalDx recovers d𝐱 from complementarity once d𝐳 is known.
func expandNormalDx(x, z, rmu, dz, dx []float64) {
	for i := range dx {
		dx[i] = -(rmu[i] + x[i]*dz[i]) / z[i]
	}
}

// denseFullKKT forms the full KKT matrix from a dense constraint matrix.
func denseFullKKT(a *mat.Dense, x, z []float64, dst *mat.Dense) {
	m, n := a.Dims()
	dst.Zero()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			dst.Set(n+i, j, v)
			dst.Set(j, n+i, v)
		}
	}
	for i := 0; i < n; i++ {
		dst.Set(i, n+m+i, -1)
		dst.Set(n+m+i, i, -1)
		dst.Set(n+m+i, n+m+i, -x[i]/z[i])
	}
}

// denseAugKKT forms the augmented KKT matrix from a dense constraint matrix.
func denseAugKKT(a *mat.Dense, x, z []float64, dst *mat.Dense) {
	m, n := a.Dims()
	dst.Zero()
	for i := 0; i < n; i++ {
		dst.Set(i, i, z[i]/x[i])
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			dst.Set(n+i, j, v)
			dst.Set(j, n+i, v)
		}
	}
}

// denseNormalKKT forms 𝐀·diag(𝐱/𝐳)·𝐀ᵀ.
func denseNormalKKT(a *mat.Dense, x, z []float64, dst *mat.SymDense) {
	m, n := a.Dims()
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += a.At(i, k) * (x[k] / z[k]) * a.At(j, k)
			}
			dst.SetSym(i, j, sum)
		}
	}
}
