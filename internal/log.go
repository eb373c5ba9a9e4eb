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
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)


// Process logger. Replaced once at startup by LogAlsoToFile, read everywhere else
var Logger=zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

var logFile *os.File

// Sends log output to the given file in addition to the console
func LogAlsoToFile(fileName string) error {
	f, err:=os.Create(fileName)
	if err!=nil { return err }
	logFile=f
	console:=zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	Logger=zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	return nil
}

// Flushes and closes the log file, if any
func LogSync() {
	if logFile!=nil {
		logFile.Sync()
		logFile.Close()
		logFile=nil
	}
}

func LogPrintf(format string, args ...interface{}) {
	Logger.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func LogPrintln(args ...interface{}) {
	Logger.Info().Msg(strings.TrimRight(fmt.Sprintln(args...), "\n"))
}

func LogWarnf(format string, args ...interface{}) {
	Logger.Warn().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Logs at fatal level, closes the log file and exits
func LogFatal(args ...interface{}) {
	Logger.WithLevel(zerolog.FatalLevel).Msg(strings.TrimRight(fmt.Sprint(args...), "\n"))
	LogSync()
	os.Exit(1)
}

func LogFatalf(format string, args ...interface{}) {
	LogFatal(fmt.Sprintf(format, args...))
}


// Adapts the process logger to an io.Writer for progress output. Each write becomes one info event
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	for _, line:=range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		Logger.Info().Msg(line)
	}
	return len(p), nil
}

// Writer for Context.Log which forwards to the process logger
func LogWriter() io.Writer { return logWriter{} }
