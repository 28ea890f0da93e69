package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gnana997/displayname/pkg/transformer"
)

// defaultFileName selects the TSX grammar when a request has no filename.
const defaultFileName = "input.tsx"

type sourceRequest struct {
	Code     string `json:"code"`
	FileName string `json:"filename"`
}

func (s *Server) bindSource(c *gin.Context) (sourceRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return req, false
	}
	if strings.TrimSpace(req.FileName) == "" {
		req.FileName = defaultFileName
	}
	return req, true
}

func (s *Server) healthCheck(c *gin.Context) {
	stats := s.engine.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    s.version,
		"transforms": stats.Transforms,
		"cache_hits": stats.CacheHits,
	})
}

// handleTransform inserts displayName labels into the posted source.
func (s *Server) handleTransform(c *gin.Context) {
	req, ok := s.bindSource(c)
	if !ok {
		return
	}

	src := []byte(req.Code)
	res, err := s.engine.Transform(c.Request.Context(), req.FileName, src)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, transformer.NewResponse(src, res))
}

// handleComponents lists the component bindings in the posted source.
func (s *Server) handleComponents(c *gin.Context) {
	req, ok := s.bindSource(c)
	if !ok {
		return
	}

	src := []byte(req.Code)
	cands, err := s.engine.Candidates(c.Request.Context(), req.FileName, src)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":   req.FileName,
		"components": transformer.DescribeCandidates(src, cands),
	})
}
