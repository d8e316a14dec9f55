// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
	"github.com/pdiddy/coldspray-hub/internal/dataset"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// categoryOptions describes one filter widget.
type categoryOptions struct {
	Name      string          `json:"name"`
	PaperType types.PaperType `json:"paper_type"`
	Checkbox  bool            `json:"checkbox"`
	Keyword   bool            `json:"keyword"`
	Options   []string        `json:"options"`
	Vars      []string        `json:"vars"`
}

type optionsResponse struct {
	PaperTypes []types.PaperType `json:"paper_types"`
	Categories []categoryOptions `json:"categories"`
	Default    compose.Selection `json:"default_selection"`
}

func (s *Server) handleOptions(c *gin.Context) {
	resp := optionsResponse{
		PaperTypes: []types.PaperType{types.PaperAny, types.PaperExperimental, types.PaperNumerical},
		Default:    compose.DefaultSelection(),
	}
	for _, cat := range fragment.Categories() {
		_, keyword := fragment.Template(cat)
		resp.Categories = append(resp.Categories, categoryOptions{
			Name:      cat.String(),
			PaperType: cat.PaperType(),
			Checkbox:  cat.Checkbox(),
			Keyword:   keyword,
			Options:   fragment.Options(cat),
			Vars:      fragment.Vars(cat),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// bindSelection reads a Selection from the body. Filters given in the
// body replace the browser's initial state per category.
func bindSelection(c *gin.Context) (compose.Selection, bool) {
	var sel compose.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		handleError(c, NewAppError(http.StatusBadRequest, "Invalid selection", err))
		return compose.Selection{}, false
	}
	filters := compose.DefaultSelection().Filters
	for cat, choice := range sel.Filters {
		filters[cat] = choice
	}
	sel.Filters = filters
	return sel, true
}

func (s *Server) handleCompose(c *gin.Context) {
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	q, err := s.deps.Browse.Compose(sel)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleQuery(c *gin.Context) {
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	out, err := s.deps.Browse.Browse(c.Request.Context(), sel)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type sparqlRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleSPARQL(c *gin.Context) {
	var req sparqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewAppError(http.StatusBadRequest, "Missing query", err))
		return
	}
	out, err := s.deps.Browse.Query(c.Request.Context(), req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePapers(c *gin.Context) {
	papers := dataset.Papers(s.deps.Graph, s.deps.Namespace)
	if papers == nil {
		papers = []types.Paper{}
	}
	c.JSON(http.StatusOK, gin.H{"papers": papers, "count": len(papers)})
}

func (s *Server) handleDescribe(c *gin.Context) {
	doi := c.Query("doi")
	if doi == "" {
		handleError(c, NewAppError(http.StatusBadRequest, "Missing doi parameter", nil))
		return
	}
	d, err := dataset.Describe(s.deps.Graph, s.deps.Namespace, doi)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, dataset.ComputeStats(s.deps.Graph, s.deps.Namespace))
}

type contributionRequest struct {
	DOI string `json:"doi"`
}

func (s *Server) handleContribute(c *gin.Context) {
	var req contributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	doi, err := s.deps.Contrib.Submit(req.DOI)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"doi": doi, "message": contrib.ThankYou})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.deps.History == nil {
		handleError(c, NewAppError(http.StatusNotFound, "History is disabled", nil))
		return
	}
	f := history.Filter{
		PaperType: types.PaperType(c.Query("paper_type")),
		Contains:  c.Query("contains"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(c, NewAppError(http.StatusBadRequest, "Invalid limit", err))
			return
		}
		f.Limit = n
	}
	if v := c.Query("failed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			handleError(c, NewAppError(http.StatusBadRequest, "Invalid failed flag", err))
			return
		}
		f.FailedOnly = b
	}

	entries, err := s.deps.History.Recent(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) handleHistoryEntry(c *gin.Context) {
	if s.deps.History == nil {
		handleError(c, NewAppError(http.StatusNotFound, "History is disabled", nil))
		return
	}
	e, err := s.deps.History.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
