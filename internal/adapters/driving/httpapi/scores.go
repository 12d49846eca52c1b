package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

func (s *Server) listScores(c *gin.Context) {
	p := newParams(c)
	filter := domain.ScoreFilter{
		QueryID: p.id("query_id", false),
		Brand:   p.str("brand"),
		Period:  domain.Period(p.str("period")),
	}
	page := p.page()
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	result, err := s.deps.Source.ListScores(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.NewPaginated(result, wire.FromScore))
}

func (s *Server) score(c *gin.Context) {
	p := newParams(c)
	req := domain.ScoreRequest{
		QueryID: p.pathID("query_id"),
		Brand:   c.Param("brand"),
		Period:  domain.Period(p.str("period")),
		From:    p.timestamp("from"),
		To:      p.timestamp("to"),
	}
	if p.err != nil {
		respondError(c, p.err)
		return
	}
	if req.Period == "" {
		req.Period = domain.PeriodRaw
	}

	rec, err := s.deps.Source.Score(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromScore(*rec))
}

func (s *Server) comparison(c *gin.Context) {
	p := newParams(c)
	filter := domain.ComparisonFilter{
		Category: p.category(),
		From:     p.timestamp("from"),
		To:       p.timestamp("to"),
		Period:   domain.Period(p.str("period")),
	}
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	rows, err := s.deps.Source.Comparison(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromComparison(rows))
}

func (s *Server) snapshot(c *gin.Context) {
	snap, err := s.deps.Source.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromSnapshot(*snap))
}
