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
	"path/filepath"
	"strings"
)


// Turn filename wildcards into list of input files. Patterns without matches are kept
// verbatim, so a missing file is reported by name later on
func GlobFilenameWildcards(args []string) ([]string, error) {
	fileNames:=[]string{}
	for _, pattern:=range args {
		matches, err:=filepath.Glob(pattern)
		if err!=nil { return nil, fmt.Errorf("%s: %w", pattern, err) }
		if len(matches)==0 {
			fileNames=append(fileNames, pattern)
			continue
		}
		fileNames=append(fileNames, matches...)
	}
	return fileNames, nil
}

// Default output path for an input: <dir>/<stem>_processed.jpg
func DefaultOutputName(inName string) string {
	base:=filepath.Base(inName)
	if IsDumpFile(base) {
		base=base[:len(base)-len(DumpExt)]
	} else {
		base=strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(filepath.Dir(inName), base+"_processed.jpg")
}

// Output path for the id-th input. An empty name selects the default; names containing
// a % verb are patterns formatted with the id
func OutputNameFor(id int, inName, outName string, numInputs int) (string, error) {
	if outName=="" { return DefaultOutputName(inName), nil }
	if strings.Contains(outName, "%") { return fmt.Sprintf(outName, id), nil }
	if numInputs>1 { return "", fmt.Errorf("output %s must be a pattern like out%%d.jpg for %d inputs", outName, numInputs) }
	return outName, nil
}

// Creates the parent directory of fileName if it does not exist
func EnsureParentDir(fileName string) error {
	dir:=filepath.Dir(fileName)
	if dir=="" || dir=="." { return nil }
	return os.MkdirAll(dir, 0755)
}

// Checks that the input exists and is a regular file
func CheckInputFile(fileName string) error {
	fi, err:=os.Stat(fileName)
	if err!=nil {
		if os.IsNotExist(err) { return fmt.Errorf("input file %s does not exist", fileName) }
		return err
	}
	if fi.IsDir() { return fmt.Errorf("input %s is a directory", fileName) }
	return nil
}
