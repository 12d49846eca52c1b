package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// params parses query-string values, remembering the first failure so a
// handler can parse everything and check once.
type params struct {
	c   *gin.Context
	err error
}

func newParams(c *gin.Context) *params {
	return &params{c: c}
}

func (p *params) fail(field, reason string) {
	if p.err == nil {
		p.err = domain.NewValidationError(field, reason)
	}
}

func (p *params) str(name string) string {
	return strings.TrimSpace(p.c.Query(name))
}

func (p *params) integer(name string) int {
	raw := p.str(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, "must be an integer")
		return 0
	}
	return v
}

func (p *params) id(name string, required bool) int64 {
	raw := p.str(name)
	if raw == "" {
		if required {
			p.fail(name, "is required")
		}
		return 0
	}
	return p.parseID(name, raw)
}

func (p *params) pathID(name string) int64 {
	return p.parseID(name, p.c.Param(name))
}

func (p *params) parseID(name, raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		p.fail(name, "must be a positive integer")
		return 0
	}
	return v
}

func (p *params) boolPtr(name string) *bool {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, "must be true or false")
		return nil
	}
	return &v
}

// timestamp accepts RFC 3339 timestamps or plain dates (midnight UTC).
func (p *params) timestamp(name string) time.Time {
	raw := p.str(name)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t
	}
	p.fail(name, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	return time.Time{}
}

func (p *params) page() domain.PageRequest {
	return domain.PageRequest{Page: p.integer("page"), PageSize: p.integer("page_size")}
}

func (p *params) category() *domain.Category {
	raw := p.str("category")
	if raw == "" {
		return nil
	}
	c := domain.Category(raw)
	return &c
}

func (p *params) priority() *domain.Priority {
	raw := p.str("priority")
	if raw == "" {
		return nil
	}
	pr := domain.Priority(raw)
	return &pr
}

// list splits a comma-separated value, dropping empty entries.
func (p *params) list(name string) []string {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
