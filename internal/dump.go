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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
)


// Float dumps hold a color buffer losslessly: zstd compressed, with a
// "CLB1" magic, little-endian uint32 width and height, then float32 planes.
const DumpExt=".clb.zst"

var dumpMagic=[4]byte{'C', 'L', 'B', '1'}

// Largest accepted dimensions when reading dumps. Samples are read in chunks,
// so a truncated stream fails before the full buffer is allocated
const (
	maxDumpSide   = 1<<16
	maxDumpPixels = 1<<26
	dumpChunk     = 1<<16
)

func IsDumpFile(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), DumpExt)
}

// Writes the buffer as compressed float dump
func WriteDump(w io.Writer, b *ColorBuffer) error {
	enc, err:=zstd.NewWriter(w, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err!=nil { return err }
	bw:=bufio.NewWriter(enc)
	hdr:=struct {
		Magic         [4]byte
		Width, Height uint32
	}{dumpMagic, uint32(b.Width), uint32(b.Height)}
	if err=binary.Write(bw, binary.LittleEndian, &hdr); err==nil {
		err=binary.Write(bw, binary.LittleEndian, b.Data)
	}
	if err==nil { err=bw.Flush() }
	if cerr:=enc.Close(); err==nil { err=cerr }
	return err
}

// Reads a compressed float dump
func ReadDump(r io.Reader) (*ColorBuffer, error) {
	dec, err:=zstd.NewReader(r)
	if err!=nil { return nil, err }
	defer dec.Close()

	var hdr struct {
		Magic         [4]byte
		Width, Height uint32
	}
	br:=bufio.NewReader(dec)
	if err:=binary.Read(br, binary.LittleEndian, &hdr); err!=nil { return nil, err }
	if hdr.Magic!=dumpMagic { return nil, errors.New("not a color buffer dump") }
	if hdr.Width==0 || hdr.Height==0 { return nil, ErrEmptyBuffer }
	if hdr.Width>maxDumpSide || hdr.Height>maxDumpSide || uint64(hdr.Width)*uint64(hdr.Height)>maxDumpPixels {
		return nil, fmt.Errorf("dump size %dx%d too large", hdr.Width, hdr.Height)
	}

	n:=3*int(hdr.Width)*int(hdr.Height)
	chunkLen:=dumpChunk
	if n<chunkLen { chunkLen=n }
	data :=make([]float32, 0, chunkLen)
	chunk:=make([]float32, chunkLen)
	for len(data)<n {
		c:=chunk
		if rest:=n-len(data); rest<len(c) { c=c[:rest] }
		if err:=binary.Read(br, binary.LittleEndian, c); err!=nil {
			return nil, fmt.Errorf("dump truncated after %d of %d samples: %w", len(data), n, err)
		}
		data=append(data, c...)
	}
	return NewColorBufferFromData(int(hdr.Width), int(hdr.Height), data)
}

func WriteDumpFile(fileName string, b *ColorBuffer) error {
	if dir:=filepath.Dir(fileName); dir!="" {
		if err:=os.MkdirAll(dir, 0755); err!=nil { return err }
	}
	f, err:=os.Create(fileName)
	if err!=nil { return err }
	err=WriteDump(f, b)
	if cerr:=f.Close(); err==nil { err=cerr }
	return err
}

func ReadDumpFile(fileName string) (*ColorBuffer, error) {
	f, err:=os.Open(filepath.Clean(fileName))
	if err!=nil { return nil, err }
	defer f.Close()
	b, err:=ReadDump(f)
	if err!=nil { return nil, fmt.Errorf("%s: %w", fileName, err) }
	return b, nil
}
