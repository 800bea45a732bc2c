/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SolveLeastSquares solves the overdetermined system a*x = b for x in
// the least-squares sense via QR decomposition, the operation spec
// section 4.5 calls for to jointly separate overlapping WWV/WWVH
// tones: each column of a is one station's reference waveform sampled
// over the analysis window, b is the observed composite signal, and
// the solved x is each station's best-fit amplitude and phase.
func SolveLeastSquares(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	rows, cols := a.Dims()
	if rows < cols {
		return nil, fmt.Errorf("dsp: underdetermined system (%d rows, %d cols)", rows, cols)
	}
	var qr mat.QR
	qr.Factorize(a)
	x := mat.NewVecDense(cols, nil)
	err := qr.SolveVecTo(x, false, b)
	if err != nil {
		return nil, fmt.Errorf("dsp: least-squares solve failed: %w", err)
	}
	return x, nil
}

// Residuals computes a*x - b, used to turn a least-squares solution
// back into a residual power figure for confidence scoring.
func Residuals(a *mat.Dense, x *mat.VecDense, b *mat.VecDense) *mat.VecDense {
	rows, _ := a.Dims()
	fit := mat.NewVecDense(rows, nil)
	fit.MulVec(a, x)
	out := mat.NewVecDense(rows, nil)
	out.SubVec(fit, b)
	return out
}
