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
	"bytes"
	"fmt"
	"io"
	"strings"
)


// A pure buffer transform. Must not modify its input
type Operator interface {
	Apply(in *ColorBuffer, c *Context) (*ColorBuffer, error)
	String() string
}

var _ Operator = (*OpUnsharpMask)(nil)  // Compile time assertions: types implement the interface
var _ Operator = (*OpNoiseReduce)(nil)
var _ Operator = (*OpColorAdjust)(nil)


// Called after each active stage with its output. Used for intermediate dumps
type StageHook func(index int, op Operator, out *ColorBuffer) error

// A fixed sequence of operators
type Pipeline struct {
	Ops  []Operator
	Hook StageHook
}

// Builds the pipeline for the given parameters: unsharp mask, noise reduction, color adjustment
func NewPipeline(p ProcessingParameters) *Pipeline {
	return &Pipeline{Ops: []Operator{
		NewOpUnsharpMask(p.SharpeningStrength, p.BlurSigma),
		NewOpNoiseReduce(p.NoiseReduction, p.NLM()),
		NewOpColorAdjust(p.Saturation, p.Contrast),
	}}
}

func (pl *Pipeline) String() string {
	names:=make([]string, len(pl.Ops))
	for i, op:=range pl.Ops { names[i]=op.String() }
	return strings.Join(names, " -> ")
}

// Runs all operators in order. The first failure aborts the run and no result is returned
func (pl *Pipeline) Apply(in *ColorBuffer, c *Context) (*ColorBuffer, error) {
	if err:=in.Validate(); err!=nil { return nil, fmt.Errorf("input: %w", err) }
	cur:=in
	for i, op:=range pl.Ops {
		next, err:=op.Apply(cur, c)
		if err!=nil { return nil, fmt.Errorf("stage %d (%s): %w", i, op, err) }
		if next!=cur && pl.Hook!=nil {
			if err:=pl.Hook(i, op, next); err!=nil { return nil, err }
		}
		cur=next
	}
	if cur==in { cur=in.Clamped() }  // all stages inactive: still hand out a fresh, clamped buffer
	return cur, nil
}


// Validates parameters, then runs the full pipeline
func Process(in *ColorBuffer, p ProcessingParameters, c *Context) (*ColorBuffer, error) {
	if err:=p.Validate(); err!=nil { return nil, err }
	fmt.Fprintf(c.logWriter(), "Processing %s image with %s\n", in, p)
	return NewPipeline(p).Apply(in, c)
}


// Serializes a finished buffer, e.g. as JPEG
type Encoder interface {
	Encode(w io.Writer, b *ColorBuffer, quality int) error
}

// Processes the buffer and encodes the result into w. Output is produced
// completely in memory first, so w receives nothing if any stage fails.
func Render(w io.Writer, in *ColorBuffer, p ProcessingParameters, enc Encoder, c *Context) error {
	out, err:=Process(in, p, c)
	if err!=nil { return err }
	var buf bytes.Buffer
	if err:=enc.Encode(&buf, out, p.JPEGQuality); err!=nil { return err }
	_, err=buf.WriteTo(w)
	return err
}
