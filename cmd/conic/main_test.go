// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/conic/ipf"
)

const denseDoc = `
m: 1
n: 2
dense:
  - [1, 1]
b: [1]
c: [1, 2]
x0: [0.5, 0.5]
y0: [0]
z0: [1, 2]
`

const sparseDoc = `
m: 2
n: 2
sparse:
  - {i: 0, j: 0, v: 1}
  - {i: 1, j: 1, v: 2}
b: [1, 2]
c: [1, 1]
`

func TestProblemDecode(t *testing.T) {
	var p problem
	require.NoError(t, yaml.Unmarshal([]byte(denseDoc), &p))
	require.NoError(t, p.validate())
	require.True(t, p.initialized())

	p = problem{}
	require.NoError(t, yaml.Unmarshal([]byte(sparseDoc), &p))
	require.NoError(t, p.validate())
	require.False(t, p.initialized())
	require.Len(t, p.Sparse, 2)
	require.Equal(t, 2.0, p.Sparse[1].V)
}

func TestProblemValidate(t *testing.T) {
	base := func() problem {
		var p problem
		require.NoError(t, yaml.Unmarshal([]byte(denseDoc), &p))
		return p
	}

	p := base()
	p.B = p.B[:0]
	require.Error(t, p.validate(), "short b")

	p = base()
	p.Sparse = append(p.Sparse, struct {
		I int     `yaml:"i"`
		J int     `yaml:"j"`
		V float64 `yaml:"v"`
	}{0, 0, 1})
	require.Error(t, p.validate(), "both matrix forms")

	p = base()
	p.Y0 = nil
	require.Error(t, p.validate(), "partial starting point")
}

func TestOptionsCtrl(t *testing.T) {
	opts := options{system: "normal", tol: 1e-6, maxIts: 10, centering: 0.5}
	ctrl, err := opts.ctrl(nil)
	require.NoError(t, err)
	require.Equal(t, ipf.NormalKKT, ctrl.System)
	require.Equal(t, 1e-6, ctrl.Tol)
	require.Equal(t, 10, ctrl.MaxIts)

	opts.system = "bogus"
	_, err = opts.ctrl(nil)
	require.Error(t, err)
}
