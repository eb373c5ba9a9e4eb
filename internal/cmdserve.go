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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)


// Largest accepted upload for the process endpoint
const maxUploadBytes=256<<20

// State of the HTTP server. Read-only after construction; every request runs a fresh pipeline
type Server struct {
	Preview   *ColorBuffer  // downscaled source for live previews, nil if none
	Threads   int
	StaticDir string
}

// Creates a server, optionally loading and downscaling a source image for previews
func NewServer(sourceFile string, t Transfer, previewSide, threads int, staticDir string) (*Server, error) {
	s:=&Server{Threads: threads, StaticDir: staticDir}
	if sourceFile!="" {
		src, err:=LoadColorBuffer(sourceFile, t)
		if err!=nil { return nil, err }
		s.Preview, err=MakePreview(src, previewSide)
		if err!=nil { return nil, err }
		LogPrintf("Loaded preview source %s, %s downscaled to %s", sourceFile, src, s.Preview)
	}
	return s, nil
}

func (s *Server) context() *Context {
	return &Context{Log: LogWriter(), MaxThreads: s.Threads}
}

// Sets up routes for the API and the static frontend
func (s *Server) Router() *gin.Engine {
	r:=gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Serve frontend static files
	if s.StaticDir!="" {
		if fi, err:=os.Stat(s.StaticDir); err==nil && fi.IsDir() {
			r.Use(static.Serve("/", static.LocalFile(s.StaticDir, true)))
		}
	}

	r.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/api/v1/defaults", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"processing": DefaultProcessingParameters(),
			"sliders"   : DefaultSliderParameters(),
		})
	})
	r.POST("/api/v1/process", s.handleProcess)
	r.GET ("/api/v1/preview", s.handlePreview)
	return r
}

// Serve static web content and API endpoints via HTTP
func CmdServe(port int, s *Server) {
	LogPrintln("Listening on port", port)
	if err:=s.Router().Run(fmt.Sprintf(":%d", port)); err!=nil {
		LogFatal(err)
	}
}


// Reads parameters from the form fields "params" (processing parameters as JSON)
// or "sliders" (slider positions as JSON). Defaults apply if neither is present
func paramsFromForm(c *gin.Context) (ProcessingParameters, error) {
	if js:=c.PostForm("params"); js!="" {
		var p ProcessingParameters
		err:=json.Unmarshal([]byte(js), &p)
		return p, err
	}
	if js:=c.PostForm("sliders"); js!="" {
		var sp SliderParameters
		if err:=json.Unmarshal([]byte(js), &sp); err!=nil { return ProcessingParameters{}, err }
		return sp.ProcessingParameters(), nil
	}
	return DefaultProcessingParameters(), nil
}

// Maps processing errors to HTTP responses
func abortWithError(c *gin.Context, err error) {
	var pe *ParameterError
	switch {
	case errors.As(err, &pe):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": pe.Field})
	case errors.Is(err, ErrNonFinite), errors.Is(err, ErrEmptyBuffer):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Processes an uploaded image, form file "image", and responds with the JPEG
func (s *Server) handleProcess(c *gin.Context) {
	c.Request.Body=http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	p, err:=paramsFromForm(c)
	if err!=nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err:=ParseTransfer(c.PostForm("transfer"))
	if err!=nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fh, err:=c.FormFile("image")
	if err!=nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing form file image"})
		return
	}
	if err:=p.Validate(); err!=nil {
		abortWithError(c, err)
		return
	}

	f, err:=fh.Open()
	if err!=nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()
	in, err:=DecodeColorBuffer(f, fh.Filename, t)
	if err!=nil {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}

	ctx:=s.context()
	var buf bytes.Buffer
	if err:=Render(&buf, in, p, JPEGEncoder{Context: ctx}, ctx); err!=nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}


var upgrader=websocket.Upgrader{
	ReadBufferSize : 4096,
	WriteBufferSize: 64<<10,
	CheckOrigin    : func(r *http.Request) bool { return true },
}

// Live preview. Each text message carries slider positions as JSON and is answered with
// a binary JPEG of the preview source processed with them, or a JSON error text message
func (s *Server) handlePreview(c *gin.Context) {
	if s.Preview==nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no preview source loaded"})
		return
	}
	conn, err:=upgrader.Upgrade(c.Writer, c.Request, nil)
	if err!=nil { return }
	defer conn.Close()

	for {
		mt, msg, err:=conn.ReadMessage()
		if err!=nil { return }
		if mt!=websocket.TextMessage { continue }

		data, err:=s.renderPreview(msg)
		if err!=nil {
			reply, _:=json.Marshal(gin.H{"error": err.Error()})
			if err:=conn.WriteMessage(websocket.TextMessage, reply); err!=nil { return }
			continue
		}
		if err:=conn.WriteMessage(websocket.BinaryMessage, data); err!=nil { return }
	}
}

// Runs the pipeline on the preview source with the given slider positions
func (s *Server) renderPreview(msg []byte) ([]byte, error) {
	var sp SliderParameters
	if err:=json.Unmarshal(msg, &sp); err!=nil { return nil, err }
	p:=sp.ProcessingParameters()
	ctx:=s.context()
	var buf bytes.Buffer
	if err:=Render(&buf, s.Preview, p, JPEGEncoder{Context: ctx}, ctx); err!=nil { return nil, err }
	return buf.Bytes(), nil
}
