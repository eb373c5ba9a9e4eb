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
	"errors"
	"fmt"
)


// Error classes. Match with errors.Is
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNonFinite         = errors.New("non-finite sample")
	ErrEmptyBuffer       = errors.New("empty buffer")
)


// A parameter outside of its documented range
type ParameterError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

func newParameterError(field string, value interface{}, reason string) error {
	return &ParameterError{Field: field, Value: value, Reason: reason}
}


// Two buffers which must share dimensions do not
type DimensionError struct {
	Op            string
	Width, Height int
	OtherWidth    int
	OtherHeight   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: buffer size %dx%d differs from %dx%d", e.Op, e.Width, e.Height, e.OtherWidth, e.OtherHeight)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// Returns a DimensionError if a and b differ in size, nil otherwise
func checkSameSize(op string, a, b *ColorBuffer) error {
	if a.Width==b.Width && a.Height==b.Height { return nil }
	return &DimensionError{Op: op, Width: a.Width, Height: a.Height, OtherWidth: b.Width, OtherHeight: b.Height}
}
