package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

func (s *Server) listQueries(c *gin.Context) {
	p := newParams(c)
	filter := domain.QueryFilter{
		Category: p.category(),
		Priority: p.priority(),
		Active:   p.boolPtr("is_active"),
	}
	page := p.page()
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	result, err := s.deps.Source.ListQueries(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.NewPaginated(result, wire.FromQuery))
}

func (s *Server) getQuery(c *gin.Context) {
	p := newParams(c)
	id := p.pathID("id")
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	q, err := s.deps.Source.GetQuery(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromQuery(*q))
}

func (s *Server) createQuery(c *gin.Context) {
	var body wire.QueryCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	q, err := s.deps.Queries.Create(c.Request.Context(), body.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wire.FromQuery(*q))
}

func (s *Server) updateQuery(c *gin.Context) {
	p := newParams(c)
	id := p.pathID("id")
	if p.err != nil {
		respondError(c, p.err)
		return
	}
	var body wire.QueryUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	q, err := s.deps.Queries.Update(c.Request.Context(), id, body.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromQuery(*q))
}

func (s *Server) deleteQuery(c *gin.Context) {
	p := newParams(c)
	id := p.pathID("id")
	if p.err != nil {
		respondError(c, p.err)
		return
	}

	if err := s.deps.Queries.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
