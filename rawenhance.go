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

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/mlnoga/rawenhance/internal"
)

const version = "0.1.0"

var def=internal.DefaultProcessingParameters()

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var logName    = flag.String("log", "", "save log output to `file`")
var preset     = flag.String("preset", "", "load processing parameters from YAML or JSON `file`, flags override")

var out        = flag.String("out", "", "save output to `file`, or pattern with %d for several inputs. Default <stem>_processed.jpg")
var dump       = flag.String("dump", "", "save intermediate stage buffers to `pattern` with %d for image and stage, e.g. dump/%d_%d"+internal.DumpExt)
var transfer   = flag.String("transfer", "auto", "transfer function of 8/16-bit inputs: auto, linear or srgb")
var threads    = flag.Int("threads", 0, "total worker goroutines, 0 for one per logical core")

var strength   = flag.Float64("strength", float64(def.SharpeningStrength), "unsharp mask strength, 1 leaves the image unchanged")
var sigma      = flag.Float64("sigma", float64(def.BlurSigma), "standard deviation of the unsharp mask blur in pixels")
var quality    = flag.Int("quality", def.JPEGQuality, "JPEG quality 0-100")
var noise      = flag.Float64("noise", float64(def.NoiseReduction), "noise reduction weight 0-1, 0 disables")
var saturation = flag.Float64("saturation", float64(def.Saturation), "saturation factor, 1 unchanged, 0 gray")
var contrast   = flag.Float64("contrast", float64(def.Contrast), "contrast factor around mid gray, 1 unchanged")
var noiseH     = flag.Float64("noiseH", float64(def.NoiseH), "non-local means filter strength h")
var noisePatch = flag.Int("noisePatch", def.NoisePatchRadius, "non-local means patch radius")
var noiseSearch= flag.Int("noiseSearch", def.NoiseSearchRadius, "non-local means search window radius")

var width      = flag.Int("width", 768, "synth: image width")
var height     = flag.Int("height", 512, "synth: image height")
var synthNoise = flag.Float64("synthNoise", 0.02, "synth: amplitude of uniform noise added")
var seed       = flag.Uint("seed", 1, "synth: random seed")

var port       = flag.Int("port", 8080, "serve: HTTP port")
var source     = flag.String("source", "", "serve: image `file` for live websocket previews")
var static     = flag.String("static", "", "serve: directory with frontend static files")
var previewSide= flag.Int("previewSide", 1024, "serve: maximum side length of the preview image")


func main() {
	flag.Usage=usage
	flag.Parse()
	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		os.Exit(2)
	}

	if *logName!="" {
		if err:=internal.LogAlsoToFile(*logName); err!=nil { internal.LogFatalf("Unable to open log file %s: %s", *logName, err) }
	}
	defer internal.LogSync()

	if *cpuprofile!="" {
		f, err:=os.Create(*cpuprofile)
		if err!=nil { internal.LogFatal("Could not create CPU profile: ", err) }
		defer f.Close()
		if err:=pprof.StartCPUProfile(f); err!=nil { internal.LogFatal("Could not start CPU profile: ", err) }
		defer pprof.StopCPUProfile()
	}

	internal.LogPrintln("rawenhance", version)
	internal.LogSystemInfo()

	t, err:=internal.ParseTransfer(*transfer)
	if err!=nil { internal.LogFatal(err) }
	p, err:=processingParameters()
	if err!=nil { internal.LogFatal(err) }

	exitCode:=0
	switch args[0] {
	case "process":
		fileNames, err:=internal.GlobFilenameWildcards(args[1:])
		if err!=nil { internal.LogFatal(err) }
		o:=&internal.ProcessOptions{OutName: *out, Transfer: t, DumpPattern: *dump, Threads: *threads}
		if n:=internal.CmdProcess(fileNames, p, o); n>0 {
			internal.LogPrintf("%d of %d images failed", n, len(fileNames))
			exitCode=1
		}

	case "stats":
		fileNames, err:=internal.GlobFilenameWildcards(args[1:])
		if err!=nil { internal.LogFatal(err) }
		if n:=internal.CmdStats(fileNames, t); n>0 { exitCode=1 }

	case "synth":
		outName:=*out
		if outName=="" { outName="synth"+internal.DumpExt }
		sp:=internal.SynthParams{Width: *width, Height: *height, Noise: float32(*synthNoise), Seed: uint32(*seed)}
		if err:=internal.CmdSynth(sp, outName); err!=nil { internal.LogFatal(err) }

	case "serve":
		if err:=p.Validate(); err!=nil { internal.LogFatal(err) }
		s, err:=internal.NewServer(*source, t, *previewSide, *threads, *static)
		if err!=nil { internal.LogFatal(err) }
		internal.CmdServe(*port, s)

	case "params":
		if err:=internal.CmdParams(p, os.Stdout); err!=nil { internal.LogFatal(err) }

	case "version":
		fmt.Printf("rawenhance %s\n", version)

	default:
		internal.LogPrintf("Unknown command '%s'\n\n", args[0])
		flag.Usage()
		exitCode=2
	}

	if exitCode!=0 {
		internal.LogSync()
		os.Exit(exitCode)
	}
}


// Loads the preset if given, then applies all flags set explicitly on the command line
func processingParameters() (internal.ProcessingParameters, error) {
	p:=internal.DefaultProcessingParameters()
	if *preset!="" {
		var err error
		p, err=internal.LoadProcessingParameters(*preset)
		if err!=nil { return p, err }
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strength"   : p.SharpeningStrength=float32(*strength)
		case "sigma"      : p.BlurSigma         =float32(*sigma)
		case "quality"    : p.JPEGQuality       =*quality
		case "noise"      : p.NoiseReduction    =float32(*noise)
		case "saturation" : p.Saturation        =float32(*saturation)
		case "contrast"   : p.Contrast          =float32(*contrast)
		case "noiseH"     : p.NoiseH            =float32(*noiseH)
		case "noisePatch" : p.NoisePatchRadius  =*noisePatch
		case "noiseSearch": p.NoiseSearchRadius =*noiseSearch
		}
	})
	return p, nil
}


func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
`rawenhance %s: sharpening, noise reduction and color adjustment for linear RGB images.

Usage: %s [-flag value] (process|stats|synth|serve|params|version) [img0.tif ... imgn.tif]

Commands:
  process  Sharpen, denoise and color adjust the given images, writing JPGs
  stats    Show per-channel statistics of the given images
  synth    Write a synthetic test chart to -out, as float dump (%s) or JPG
  serve    Serve the HTTP processing API and websocket live preview
  params   Print the effective processing parameters as YAML preset
  version  Print version

Flags:
`, version, os.Args[0], internal.DumpExt)
	flag.PrintDefaults()
}
