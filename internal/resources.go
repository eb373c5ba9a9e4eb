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
	"runtime"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)


// Logs CPU and memory of the host
func LogSystemInfo() {
	LogPrintf("%s with %d physical cores, %d logical cores, %d MB memory",
	          cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores,
	          memory.TotalMemory()/1024/1024)
}

// Default number of worker goroutines
func DefaultThreads() int {
	if n:=cpuid.CPU.LogicalCores; n>0 && n<=runtime.NumCPU() { return n }
	return runtime.NumCPU()
}

// Upper bound on bytes held during one pipeline run for a width x height image:
// input, blur scratch, blurred, sharpened, padded noise reduction planes, denoised, adjusted, 8-bit export
func EstimatePeakMemory(width, height int, p ProcessingParameters) uint64 {
	plane:=uint64(width)*uint64(height)*4
	buffers:=uint64(6)*3*plane + uint64(width)*uint64(height)*4
	if p.NoiseReduction>0 {
		pad:=uint64(2*(p.NoisePatchRadius+p.NoiseSearchRadius))
		buffers+=3*4*(uint64(width)+pad)*(uint64(height)+pad)
	}
	return buffers
}

// Number of images to process concurrently, limited by threads and by
// three quarters of physical memory, but at least one
func ImageLevelParallelism(numImages, threads int, peakPerImage uint64) int {
	n:=numImages
	if threads<n { n=threads }
	if total:=memory.TotalMemory(); total>0 && peakPerImage>0 {
		if byMem:=int(total/4*3/peakPerImage); byMem<n { n=byMem }
	}
	if n<1 { n=1 }
	return n
}

// Warns if a single image exceeds three quarters of physical memory
func WarnIfOversized(width, height int, p ProcessingParameters) {
	peak:=EstimatePeakMemory(width, height, p)
	if total:=memory.TotalMemory(); total>0 && peak>total/4*3 {
		LogWarnf("Processing %dx%d needs about %d MB, host has %d MB", width, height, peak/1024/1024, total/1024/1024)
	}
}
