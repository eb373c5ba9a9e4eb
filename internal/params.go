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
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)


// Parameters for a single pipeline run. Passed by value; never shared or mutated during a run
type ProcessingParameters struct {
	SharpeningStrength float32 `json:"sharpeningStrength" yaml:"sharpening_strength"`
	BlurSigma          float32 `json:"blurSigma"          yaml:"blur_sigma"`
	JPEGQuality        int     `json:"jpegQuality"        yaml:"jpeg_quality"`
	NoiseReduction     float32 `json:"noiseReduction"     yaml:"noise_reduction"`
	Saturation         float32 `json:"saturation"         yaml:"saturation"`
	Contrast           float32 `json:"contrast"           yaml:"contrast"`

	NoiseH             float32 `json:"noiseH"             yaml:"noise_h"`
	NoisePatchRadius   int     `json:"noisePatchRadius"   yaml:"noise_patch_radius"`
	NoiseSearchRadius  int     `json:"noiseSearchRadius"  yaml:"noise_search_radius"`
}

// Defaults: moderate sharpening, no noise reduction, no color change
func DefaultProcessingParameters() ProcessingParameters {
	nlm:=DefaultNLMParams()
	return ProcessingParameters{
		SharpeningStrength: 1.5,
		BlurSigma         : 3,
		JPEGQuality       : 95,
		NoiseReduction    : 0,
		Saturation        : 1,
		Contrast          : 1,
		NoiseH            : nlm.H,
		NoisePatchRadius  : nlm.PatchRadius,
		NoiseSearchRadius : nlm.SearchRadius,
	}
}

// Print parameters
func (p ProcessingParameters) String() string {
	return fmt.Sprintf("sharpeningStrength %.3g blurSigma %.3g jpegQuality %d noiseReduction %.3g "+
	                   "saturation %.3g contrast %.3g noiseH %.4g noisePatch %d noiseSearch %d",
	                   p.SharpeningStrength, p.BlurSigma, p.JPEGQuality, p.NoiseReduction,
	                   p.Saturation, p.Contrast, p.NoiseH, p.NoisePatchRadius, p.NoiseSearchRadius)
}

// Non-local means tuning contained in the parameters
func (p ProcessingParameters) NLM() NLMParams {
	return NLMParams{H: p.NoiseH, PatchRadius: p.NoisePatchRadius, SearchRadius: p.NoiseSearchRadius}
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// Checks every field against its documented range. Returns a *ParameterError for the first violation
func (p ProcessingParameters) Validate() error {
	switch {
	case !finite(p.SharpeningStrength) || p.SharpeningStrength<0:
		return newParameterError("sharpening_strength", p.SharpeningStrength, "must be >= 0")
	case !finite(p.BlurSigma) || p.BlurSigma<=0 || p.BlurSigma>MaxBlurSigma:
		return newParameterError("blur_sigma", p.BlurSigma, fmt.Sprintf("must be in (0,%d]", MaxBlurSigma))
	case p.JPEGQuality<0 || p.JPEGQuality>100:
		return newParameterError("jpeg_quality", p.JPEGQuality, "must be in [0,100]")
	case !finite(p.NoiseReduction) || p.NoiseReduction<0 || p.NoiseReduction>1:
		return newParameterError("noise_reduction", p.NoiseReduction, "must be in [0,1]")
	case !finite(p.Saturation) || p.Saturation<0:
		return newParameterError("saturation", p.Saturation, "must be >= 0")
	case !finite(p.Contrast) || p.Contrast<0:
		return newParameterError("contrast", p.Contrast, "must be >= 0")
	}
	return p.NLM().Validate()
}

// Unmarshal the type from JSON with default values for missing entries
func (p *ProcessingParameters) UnmarshalJSON(data []byte) error {
	type defaults ProcessingParameters
	def:=defaults(DefaultProcessingParameters())
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*p=ProcessingParameters(def)
	return nil
}

// Loads parameters from a YAML or JSON preset file, chosen by extension. Missing entries take defaults
func LoadProcessingParameters(fileName string) (ProcessingParameters, error) {
	p:=DefaultProcessingParameters()
	data, err:=os.ReadFile(fileName)
	if err!=nil { return p, err }
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		err=json.Unmarshal(data, &p)
	default:
		err=yaml.Unmarshal(data, &p)
	}
	if err!=nil { return p, fmt.Errorf("%s: %w", fileName, err) }
	return p, nil
}

// Serializes parameters as YAML, as accepted by LoadProcessingParameters
func (p ProcessingParameters) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}


// Parameters as shown on 0-100 sliders of an interactive frontend
type SliderParameters struct {
	Sharpening     float32 `json:"sharpening"`     // 0-100 maps to strength 0-3
	BlurSigma      float32 `json:"blurSigma"`      // unscaled
	JPEGQuality    int     `json:"jpegQuality"`    // unscaled
	NoiseReduction float32 `json:"noiseReduction"` // 0-100 maps to 0-1
	Saturation     float32 `json:"saturation"`     // 0-100 maps to 0-2
	Contrast       float32 `json:"contrast"`       // 0-100 maps to 0-2
}

// Slider positions after a reset
func DefaultSliderParameters() SliderParameters {
	return SliderParameters{Sharpening: 50, BlurSigma: 3, JPEGQuality: 95, NoiseReduction: 30, Saturation: 55, Contrast: 55}
}

// Unmarshal the type from JSON with default values for missing entries
func (s *SliderParameters) UnmarshalJSON(data []byte) error {
	type defaults SliderParameters
	def:=defaults(DefaultSliderParameters())
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*s=SliderParameters(def)
	return nil
}

// Converts slider positions to processing parameters. Noise tuning takes defaults
func (s SliderParameters) ProcessingParameters() ProcessingParameters {
	p:=DefaultProcessingParameters()
	p.SharpeningStrength=s.Sharpening/100*3
	p.BlurSigma         =s.BlurSigma
	p.JPEGQuality       =s.JPEGQuality
	p.NoiseReduction    =s.NoiseReduction/100
	p.Saturation        =s.Saturation/50
	p.Contrast          =s.Contrast/50
	return p
}
