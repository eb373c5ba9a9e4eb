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
	"os"
	"runtime/debug"
	"sync/atomic"
)


// Settings of the process command besides the processing parameters
type ProcessOptions struct {
	OutName     string    // output file, or pattern with %d for multiple inputs. Empty for <stem>_processed.jpg
	Transfer    Transfer  // transfer function of the inputs
	DumpPattern string    // if set, intermediate buffers are written to fmt.Sprintf(DumpPattern, id, stage)
	Threads     int       // total worker goroutines
}

func (o *ProcessOptions) String() string {
	return fmt.Sprintf("out %q transfer %s dump %q threads %d", o.OutName, o.Transfer, o.DumpPattern, o.Threads)
}


// Perform processing command on all inputs. Returns the number of failed inputs
func CmdProcess(fileNames []string, p ProcessingParameters, o *ProcessOptions) (numErrors int) {
	if err:=p.Validate(); err!=nil { LogFatal(err) }
	if len(fileNames)==0 { LogFatal("No input files given") }
	threads:=o.Threads
	if threads<=0 { threads=DefaultThreads() }

	// Load first image to size image-level parallelism by available memory
	if err:=CheckInputFile(fileNames[0]); err!=nil { LogFatal(err) }
	first, err:=LoadColorBuffer(fileNames[0], o.Transfer)
	if err!=nil { LogFatal(err) }
	WarnIfOversized(first.Width, first.Height, p)
	imageLevelParallelism:=ImageLevelParallelism(len(fileNames), threads, EstimatePeakMemory(first.Width, first.Height, p))
	threadsPerImage:=threads/imageLevelParallelism
	if threadsPerImage<1 { threadsPerImage=1 }

	LogPrintf("Processing %d images, %d at a time with %d threads each, %s", len(fileNames), imageLevelParallelism, threadsPerImage, p)

	var errs int32
	sem:=make(chan bool, imageLevelParallelism)
	for id, fileName:=range fileNames {
		var in *ColorBuffer
		if id==0 { in, first=first, nil }

		sem <- true
		go func(id int, fileName string, in *ColorBuffer) {
			defer func() { <-sem }()
			c:=&Context{Log: &prefixWriter{prefix: fmt.Sprintf("%d: ", id), w: LogWriter()}, MaxThreads: threadsPerImage}
			outName, err:=OutputNameFor(id, fileName, o.OutName, len(fileNames))
			if err==nil {
				err=ProcessFile(id, fileName, in, outName, p, o, c)
			}
			if err!=nil {
				LogPrintf("%d: Error: %s", id, err.Error())
				atomic.AddInt32(&errs, 1)
			}
		}(id, fileName, in)
	}
	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
	debug.FreeOSMemory()
	return int(errs)
}


// Processes a single input file into a JPEG. If in is non-nil, it is used instead of loading the file.
// Nothing is written to outName unless all stages and the encoding succeed.
func ProcessFile(id int, fileName string, in *ColorBuffer, outName string, p ProcessingParameters, o *ProcessOptions, c *Context) error {
	if in==nil {
		if err:=CheckInputFile(fileName); err!=nil { return err }
		var err error
		in, err=LoadColorBuffer(fileName, o.Transfer)
		if err!=nil { return err }
	}
	fmt.Fprintf(c.logWriter(), "Loaded %s with %s\n", fileName, in)

	pl:=NewPipeline(p)
	if o.DumpPattern!="" {
		pl.Hook=func(index int, op Operator, out *ColorBuffer) error {
			dumpName:=fmt.Sprintf(o.DumpPattern, id, index)
			fmt.Fprintf(c.logWriter(), "Writing stage %d buffer to %s\n", index, dumpName)
			return WriteDumpFile(dumpName, out)
		}
	}
	fmt.Fprintf(c.logWriter(), "Running %s\n", pl)
	out, err:=pl.Apply(in, c)
	if err!=nil { return err }

	var buf bytes.Buffer
	if err:=(JPEGEncoder{Context: c}).Encode(&buf, out, p.JPEGQuality); err!=nil { return err }

	if err:=EnsureParentDir(outName); err!=nil { return err }
	fmt.Fprintf(c.logWriter(), "Writing JPG with quality %d to %s\n", p.JPEGQuality, outName)
	return os.WriteFile(outName, buf.Bytes(), 0644)
}


// Print the effective parameters as YAML preset
func CmdParams(p ProcessingParameters, w io.Writer) error {
	if err:=p.Validate(); err!=nil { return err }
	data, err:=p.YAML()
	if err!=nil { return err }
	_, err=w.Write(data)
	return err
}


// Prefixes each write with a fixed string, to tell apart concurrently processed images
type prefixWriter struct {
	prefix string
	w      io.Writer
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	if _, err:=pw.w.Write(append([]byte(pw.prefix), p...)); err!=nil { return 0, err }
	return len(p), nil
}
