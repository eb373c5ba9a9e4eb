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
	"io"
	"runtime"
)


// Context for a single processing run. Carries no image state
type Context struct {
	Log        io.Writer   // progress output
	MaxThreads int         // upper bound on worker goroutines. 0 means runtime.NumCPU()
}

// Context which discards progress output and uses all CPUs
func NewContext(logWriter io.Writer) *Context {
	if logWriter==nil { logWriter=io.Discard }
	return &Context{Log: logWriter, MaxThreads: runtime.NumCPU()}
}

func (c *Context) threads() int {
	if c==nil || c.MaxThreads<=0 { return runtime.NumCPU() }
	return c.MaxThreads
}

func (c *Context) logWriter() io.Writer {
	if c==nil || c.Log==nil { return io.Discard }
	return c.Log
}


//////////////////////////////////////////////////////////////////
// CPU-limited row operations. Parallelized across CPUs
//////////////////////////////////////////////////////////////////

// A row function processes rows [lower, upper). It must only write
// to output rows within that range.
type RowFunction func(lower, upper int)

// Calls rf over all rows [0,height), split into 8*threads work packages
// with at most threads running concurrently. Returns when all are done.
func ParallelRows(height, threads int, rf RowFunction) {
	if threads<=1 || height<=1 {
		rf(0, height)
		return
	}
	numBatches:=8*threads
	batchSize :=(height+numBatches-1)/numBatches
	sem       :=make(chan bool, threads)
	for lower:=0; lower<height; lower+=batchSize {
		upper:=lower+batchSize
		if upper>height { upper=height }

		sem <- true
		go func(lower, upper int) {
			rf(lower, upper)
			<-sem
		}(lower, upper)
	}

	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
}


// A pixel function transforms one RGB triple
type RGBPixelFunction func(r, g, b float32) (float32, float32, float32)

// Applies pf to every pixel of in, writing to a newly allocated buffer. Parallel by rows.
func (in *ColorBuffer) MapRGB(pf RGBPixelFunction, c *Context) *ColorBuffer {
	out:=in.newLike()
	ir, ig, ib:=in.Planes()
	or, og, ob:=out.Planes()
	w:=in.Width
	ParallelRows(in.Height, c.threads(), func(lower, upper int) {
		for i:=lower*w; i<upper*w; i++ {
			or[i], og[i], ob[i]=pf(ir[i], ig[i], ib[i])
		}
	})
	return out
}
