// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/coldspray-hub/internal/calc"
)

// criticalQuery holds the critical velocity parameters. Unset fields keep
// the defaults of the selected material.
type criticalQuery struct {
	Material string   `form:"material"`
	Rho      *float64 `form:"rho"`
	Tm       *float64 `form:"tm"`
	Cp       *float64 `form:"cp"`
	B        *float64 `form:"b"`
	Su       *float64 `form:"su"`
	Ti       *float64 `form:"ti"`
	Tp       *float64 `form:"tp"`
	D        *float64 `form:"d"`
	Gamma    *float64 `form:"gamma"`
	Dref     *float64 `form:"dref"`
}

func (q criticalQuery) inputs() (calc.Inputs, error) {
	name := q.Material
	if name == "" {
		name = "Cu"
	}
	m, err := calc.LookupMaterial(name)
	if err != nil {
		return calc.Inputs{}, err
	}
	in := calc.NewInputs(m)
	for _, f := range []struct {
		src *float64
		dst *float64
	}{
		{q.Rho, &in.Rho}, {q.Tm, &in.Tm}, {q.Cp, &in.Cp}, {q.B, &in.B},
		{q.Su, &in.Su}, {q.Ti, &in.Ti}, {q.Tp, &in.Tp}, {q.D, &in.D},
		{q.Gamma, &in.Gamma},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if q.Dref != nil {
		in = in.WithReferenceDiameter(*q.Dref)
	}
	return in, nil
}

// particleQuery holds the particle velocity parameters in calculator
// units: Pa, K, um for the particle, mm for the nozzle, m/s.
type particleQuery struct {
	Gas      string   `form:"gas"`
	Material string   `form:"material"`
	P0       *float64 `form:"p0"`
	T0       *float64 `form:"t0"`
	Dp       *float64 `form:"dp"`
	Dnt      *float64 `form:"dnt"`
	De       *float64 `form:"de"`
	Lf       *float64 `form:"lf"`
	V0       *float64 `form:"v0"`
}

func (q particleQuery) inputs() calc.ParticleInputs {
	in := calc.DefaultParticleInputs()
	if q.Gas != "" {
		in.Gas = q.Gas
	}
	if q.Material != "" {
		in.Material = q.Material
	}
	for _, f := range []struct {
		src   *float64
		dst   *float64
		scale float64
	}{
		{q.P0, &in.P0, 1}, {q.T0, &in.T0, 1}, {q.Dp, &in.Dp, calc.Micrometre},
		{q.Dnt, &in.Dnt, calc.Millimetre}, {q.De, &in.De, calc.Millimetre},
		{q.Lf, &in.Lf, calc.Millimetre}, {q.V0, &in.V0, 1},
	} {
		if f.src != nil {
			*f.dst = *f.src * f.scale
		}
	}
	return in
}

// sweepQuery selects the swept parameter. lo and hi are in the units of
// the sweep axis and must be given together.
type sweepQuery struct {
	Param  string   `form:"param" binding:"required"`
	Lo     *float64 `form:"lo"`
	Hi     *float64 `form:"hi"`
	Points int      `form:"points"`
}

func (q sweepQuery) rangeOf() (calc.Range, error) {
	switch {
	case q.Lo == nil && q.Hi == nil:
		return calc.Range{}, nil
	case q.Lo == nil || q.Hi == nil:
		return calc.Range{}, fmt.Errorf("%w: lo and hi must be given together", calc.ErrInvalidInput)
	}
	return calc.Range{Lo: *q.Lo, Hi: *q.Hi}, nil
}

func bindQuery[T any](c *gin.Context) (T, bool) {
	var q T
	if err := c.ShouldBindQuery(&q); err != nil {
		handleError(c, NewAppError(http.StatusBadRequest, "Invalid parameters", err))
		return q, false
	}
	return q, true
}

func (s *Server) handleCritical(c *gin.Context) {
	q, ok := bindQuery[criticalQuery](c)
	if !ok {
		return
	}
	in, err := q.inputs()
	if err != nil {
		handleError(c, err)
		return
	}
	v, err := in.Evaluate()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inputs": in, "velocity": v})
}

func (s *Server) criticalSweep(c *gin.Context) (calc.Sweep, bool) {
	q, ok := bindQuery[criticalQuery](c)
	if !ok {
		return calc.Sweep{}, false
	}
	sq, ok := bindQuery[sweepQuery](c)
	if !ok {
		return calc.Sweep{}, false
	}
	in, err := q.inputs()
	if err != nil {
		handleError(c, err)
		return calc.Sweep{}, false
	}
	r, err := sq.rangeOf()
	if err != nil {
		handleError(c, err)
		return calc.Sweep{}, false
	}
	sw, err := calc.SweepCritical(in, sq.Param, r, sq.Points)
	if err != nil {
		handleError(c, err)
		return calc.Sweep{}, false
	}
	return sw, true
}

func (s *Server) handleCriticalSweep(c *gin.Context) {
	if sw, ok := s.criticalSweep(c); ok {
		c.JSON(http.StatusOK, sw)
	}
}

func (s *Server) handleCriticalPlot(c *gin.Context) {
	if sw, ok := s.criticalSweep(c); ok {
		s.writeSVG(c, sw)
	}
}

func (s *Server) handleParticle(c *gin.Context) {
	q, ok := bindQuery[particleQuery](c)
	if !ok {
		return
	}
	in := q.inputs()
	v, err := in.Solve()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inputs": in, "velocity": v})
}

func (s *Server) particleSweep(c *gin.Context) (calc.Sweep, bool) {
	q, ok := bindQuery[particleQuery](c)
	if !ok {
		return calc.Sweep{}, false
	}
	sq, ok := bindQuery[sweepQuery](c)
	if !ok {
		return calc.Sweep{}, false
	}
	r, err := sq.rangeOf()
	if err != nil {
		handleError(c, err)
		return calc.Sweep{}, false
	}
	sw, err := calc.SweepParticle(q.inputs(), sq.Param, r, sq.Points)
	if err != nil {
		handleError(c, err)
		return calc.Sweep{}, false
	}
	return sw, true
}

func (s *Server) handleParticleSweep(c *gin.Context) {
	if sw, ok := s.particleSweep(c); ok {
		c.JSON(http.StatusOK, sw)
	}
}

func (s *Server) handleParticlePlot(c *gin.Context) {
	if sw, ok := s.particleSweep(c); ok {
		s.writeSVG(c, sw)
	}
}

func (s *Server) writeSVG(c *gin.Context, sw calc.Sweep) {
	c.Header("Content-Type", "image/svg+xml")
	c.Status(http.StatusOK)
	if err := sw.WriteSVG(c.Writer); err != nil {
		c.Error(err)
	}
}
