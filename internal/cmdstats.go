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
	"os"
	"runtime"
	"sync/atomic"
)


// Print per-channel statistics for each input. Returns the number of failed inputs
func CmdStats(fileNames []string, t Transfer) (numErrors int) {
	LogPrintf("Calculating statistics for %d files:", len(fileNames))

	var errs int32
	sem:=make(chan bool, runtime.NumCPU())
	for id, fileName:=range fileNames {
		sem <- true
		go func(id int, fileName string) {
			defer func() { <-sem }()
			b, err:=LoadColorBuffer(fileName, t)
			if err!=nil {
				LogPrintf("%d: Error: %s", id, err.Error())
				atomic.AddInt32(&errs, 1)
				return
			}
			if err:=b.Validate(); err!=nil {
				LogPrintf("%d: Warning: %s", id, err.Error())
			}
			s:=CalcColorStats(b)
			LogPrintf("%d: %s %s energy %.6g\n%s", id, fileName, b, s.Energy(), s)
		}(id, fileName)
	}
	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
	return int(errs)
}


// Render a synthetic test chart to a float dump or JPEG, chosen by extension
func CmdSynth(p SynthParams, outName string) error {
	LogPrintf("Synthesizing test chart with %s", &p)
	b, err:=Synthesize(p)
	if err!=nil { return err }
	if err:=EnsureParentDir(outName); err!=nil { return err }
	if IsDumpFile(outName) {
		LogPrintf("Writing float dump to %s", outName)
		return WriteDumpFile(outName, b)
	}
	LogPrintf("Writing JPG to %s", outName)
	return writeJPEGFile(outName, b, DefaultProcessingParameters().JPEGQuality)
}

func writeJPEGFile(outName string, b *ColorBuffer, quality int) error {
	f, err:=os.Create(outName)
	if err!=nil { return err }
	err=(JPEGEncoder{Context: NewContext(nil)}).Encode(f, b, quality)
	if cerr:=f.Close(); err==nil { err=cerr }
	if err!=nil { return fmt.Errorf("%s: %w", outName, err) }
	return nil
}
