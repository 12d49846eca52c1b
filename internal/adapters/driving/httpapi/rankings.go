package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

func (s *Server) listRankings(c *gin.Context) {
	p := newParams(c)
	filter := domain.ObservationFilter{
		QueryID:  p.id("query_id", false),
		Platform: domain.Platform(p.str("platform")),
		Brand:    p.str("brand"),
		From:     p.timestamp("from"),
		To:       p.timestamp("to"),
	}
	page := p.page()
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	result, err := s.deps.Source.ListRankings(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.NewPaginated(result, wire.FromRanking))
}

func (s *Server) latestRankings(c *gin.Context) {
	p := newParams(c)
	queryID := p.id("query_id", true)
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	rows, err := s.deps.Source.LatestRankings(c.Request.Context(), queryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromRankings(rows))
}

// trends defaults granularity to daily and a missing window to the
// granularity's default window ending now.
func (s *Server) trends(c *gin.Context) {
	p := newParams(c)
	req := domain.TrendRequest{
		QueryID:     p.id("query_id", true),
		Brands:      p.list("brands"),
		From:        p.timestamp("from"),
		To:          p.timestamp("to"),
		Granularity: domain.Granularity(p.str("granularity")),
	}
	if p.err != nil {
		respondError(c, p.err)
		return
	}
	if req.Granularity == "" {
		req.Granularity = domain.GranularityDaily
	}
	if req.Granularity.IsValid() {
		from, to := req.Granularity.Period().DefaultWindow(s.deps.Now())
		if req.To.IsZero() {
			req.To = to
		}
		if req.From.IsZero() {
			req.From = from
			if !req.From.Before(req.To) {
				req.From = req.To.Add(from.Sub(to))
			}
		}
	}

	points, err := s.deps.Source.Trends(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromTrends(points))
}

func (s *Server) ingest(c *gin.Context) {
	var body wire.IngestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	result, err := s.deps.Observations.Append(c.Request.Context(), body.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveIngest(len(result.Observations))
	}
	c.JSON(http.StatusCreated, wire.FromIngest(*result))
}
