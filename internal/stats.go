// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package internal

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)


// Basic statistics of a channel
type BasicStats struct {
	Min    float32
	Max    float32
	Mean   float32
	StdDev float32
	Median float32
	Sum    float64
}

func (s *BasicStats) String() string {
	return fmt.Sprintf("min %.4g max %.4g mean %.4g stddev %.4g median %.4g",
	                   s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}

// Calculates statistics over the given samples
func CalcBasicStats(data []float32) *BasicStats {
	if len(data)==0 { return &BasicStats{} }
	xs:=make([]float64, len(data))
	for i, d:=range data { xs[i]=float64(d) }
	mean, stdDev:=stat.MeanStdDev(xs, nil)
	sum:=floats.Sum(xs)
	sort.Float64s(xs)
	return &BasicStats{
		Min   : float32(xs[0]),
		Max   : float32(xs[len(xs)-1]),
		Mean  : float32(mean),
		StdDev: float32(stdDev),
		Median: float32(stat.Quantile(0.5, stat.Empirical, xs, nil)),
		Sum   : sum,
	}
}


// Statistics of all channels of a color buffer, plus CIE Y luminance
type ColorStats struct {
	R, G, B, Y *BasicStats
}

func (s *ColorStats) String() string {
	return fmt.Sprintf("R: %v\nG: %v\nB: %v\nY: %v", s.R, s.G, s.B, s.Y)
}

// Total of all samples across channels
func (s *ColorStats) Energy() float64 {
	return s.R.Sum+s.G.Sum+s.B.Sum
}

func CalcColorStats(b *ColorBuffer) *ColorStats {
	rs, gs, bs:=b.Planes()
	lum:=make([]float32, len(rs))
	for i:=range lum {
		_, y, _:=colorful.LinearRgbToXyz(float64(rs[i]), float64(gs[i]), float64(bs[i]))
		lum[i]=float32(y)
	}
	return &ColorStats{
		R: CalcBasicStats(rs),
		G: CalcBasicStats(gs),
		B: CalcBasicStats(bs),
		Y: CalcBasicStats(lum),
	}
}
