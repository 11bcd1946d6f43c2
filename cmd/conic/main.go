// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command conic solves a linear program in primal conic form
//
//	minimize 𝐜ᵀ𝐱 subject to 𝐀𝐱 = 𝐛, 𝐱 ≥ 0
//
// read from a YAML problem file, through the interior point solver. Dense
// problems run the serial dense representation; sparse problems run the
// distributed sparse representation over in-process worker ranks.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/conic/dist"
	"github.com/curioloop/conic/ipf"
)

// problem is the YAML problem file schema. Exactly one of Dense or Sparse
// holds the constraint matrix. The starting triple is optional; when all
// three are present the solver skips its own initialization.
type problem struct {
	M      int         `yaml:"m"`
	N      int         `yaml:"n"`
	Dense  [][]float64 `yaml:"dense"`
	Sparse []struct {
		I int     `yaml:"i"`
		J int     `yaml:"j"`
		V float64 `yaml:"v"`
	} `yaml:"sparse"`
	B  []float64 `yaml:"b"`
	C  []float64 `yaml:"c"`
	X0 []float64 `yaml:"x0"`
	Y0 []float64 `yaml:"y0"`
	Z0 []float64 `yaml:"z0"`
}

func (p *problem) validate() error {
	switch {
	case p.M <= 0 || p.N <= 0:
		return errors.New("m and n must be positive")
	case (len(p.Dense) == 0) == (len(p.Sparse) == 0):
		return errors.New("exactly one of dense and sparse must be given")
	case len(p.B) != p.M:
		return fmt.Errorf("b must have %d entries", p.M)
	case len(p.C) != p.N:
		return fmt.Errorf("c must have %d entries", p.N)
	}
	if p.initialized() {
		if len(p.X0) != p.N || len(p.Z0) != p.N || len(p.Y0) != p.M {
			return errors.New("x0, y0 and z0 must match the problem dimensions")
		}
	} else if len(p.X0)+len(p.Y0)+len(p.Z0) > 0 {
		return errors.New("x0, y0 and z0 must be given together")
	}
	return nil
}

func (p *problem) initialized() bool {
	return p.X0 != nil && p.Y0 != nil && p.Z0 != nil
}

type options struct {
	system    string
	tol       float64
	maxIts    int
	centering float64
	print     bool
	verify    bool
	refine    bool
	ranks     int
}

func (o *options) ctrl(log *zap.Logger) (*ipf.Ctrl, error) {
	ctrl := ipf.DefaultCtrl()
	switch o.system {
	case "full":
		ctrl.System = ipf.FullKKT
	case "augmented":
		ctrl.System = ipf.AugmentedKKT
	case "normal":
		ctrl.System = ipf.NormalKKT
	default:
		return nil, fmt.Errorf("unknown KKT system %q", o.system)
	}
	ctrl.Tol = o.tol
	ctrl.MaxIts = o.maxIts
	ctrl.Centering = o.centering
	ctrl.Print = o.print
	ctrl.Verify = o.verify
	ctrl.Refine.Enabled = o.refine
	ctrl.Diag = ipf.ZapDiagnostics{Log: log}
	return &ctrl, nil
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "conic problem.yaml",
		Short: "solve a linear program in primal conic form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(args[0], &opts)
		},
	}
	cmd.Flags().StringVar(&opts.system, "system", "augmented", "KKT system: full, augmented or normal")
	cmd.Flags().Float64Var(&opts.tol, "tol", 1e-8, "convergence tolerance")
	cmd.Flags().IntVar(&opts.maxIts, "max-its", 1000, "iteration cap")
	cmd.Flags().Float64Var(&opts.centering, "centering", 0.9, "centering parameter in [0,1]")
	cmd.Flags().BoolVar(&opts.print, "print", false, "log per-iteration progress")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "log Newton residuals of every direction")
	cmd.Flags().BoolVar(&opts.refine, "refine", false, "refine every sparse solve, not only the normal equations")
	cmd.Flags().IntVar(&opts.ranks, "ranks", 4, "worker ranks for the sparse representation")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string, opts *options) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var p problem
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return err
	}
	if err := p.validate(); err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctrl, err := opts.ctrl(log)
	if err != nil {
		return err
	}
	ctrl.Initialized = p.initialized()

	var x []float64
	if len(p.Dense) > 0 {
		x, err = solveDense(&p, ctrl)
	} else {
		x, err = solveSparse(&p, ctrl, opts.ranks)
	}
	if err != nil {
		return err
	}

	fmt.Printf("objective: %.12g\n", floats.Dot(p.C, x))
	fmt.Printf("x: %.12g\n", x)
	return nil
}

func solveDense(p *problem, ctrl *ipf.Ctrl) ([]float64, error) {
	if len(p.Dense) != p.M {
		return nil, fmt.Errorf("dense must have %d rows", p.M)
	}
	a := mat.NewDense(p.M, p.N, nil)
	for i, row := range p.Dense {
		if len(row) != p.N {
			return nil, fmt.Errorf("dense row %d must have %d entries", i, p.N)
		}
		a.SetRow(i, row)
	}
	x, y, z := starting(p)
	if err := ipf.Solve(a, p.B, p.C, x, y, z, ctrl); err != nil {
		return nil, err
	}
	return x, nil
}

func solveSparse(p *problem, ctrl *ipf.Ctrl, ranks int) ([]float64, error) {
	sol := make([]float64, p.N)
	err := dist.Run(ranks, func(c *dist.Comm) error {
		a := dist.NewSparse(c, p.M, p.N)
		first, cnt := a.Owned()
		for _, e := range p.Sparse {
			if e.I < 0 || e.I >= p.M {
				return fmt.Errorf("sparse row index %d out of range", e.I)
			}
			if e.I < first || e.I >= first+cnt {
				continue
			}
			if err := a.Append(e.I, e.J, e.V); err != nil {
				return err
			}
		}
		xf, yf, zf := starting(p)
		b := dist.NewVec(c, p.M)
		cc := dist.NewVec(c, p.N)
		x := dist.NewVec(c, p.N)
		y := dist.NewVec(c, p.M)
		z := dist.NewVec(c, p.N)
		b.SetFromGlobal(p.B)
		cc.SetFromGlobal(p.C)
		x.SetFromGlobal(xf)
		y.SetFromGlobal(yf)
		z.SetFromGlobal(zf)
		if err := ipf.SolveDistSparse(a, b, cc, x, y, z, ctrl); err != nil {
			return err
		}
		full := x.Gather(nil)
		if c.Rank() == 0 {
			copy(sol, full)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sol, nil
}

func starting(p *problem) (x, y, z []float64) {
	x = make([]float64, p.N)
	y = make([]float64, p.M)
	z = make([]float64, p.N)
	copy(x, p.X0)
	copy(y, p.Y0)
	copy(z, p.Z0)
	return x, y, z
}
