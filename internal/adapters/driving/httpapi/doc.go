// Package httpapi serves the observation source API over HTTP with gin.
//
// Routes live under wire.BasePath (/api/v1/visibility):
//
//	GET    /queries                     list queries (page, page_size, category, priority, is_active)
//	POST   /queries                     create a query
//	GET    /queries/:id                 get a query
//	PUT    /queries/:id                 update a query
//	DELETE /queries/:id                 deactivate a query
//	GET    /rankings                    list observations (query_id, platform, brand, from, to)
//	POST   /rankings                    ingest a batch of observations
//	GET    /rankings/latest             latest observation per (platform, brand)
//	GET    /rankings/trends             trend series
//	GET    /scores                      list score records
//	GET    /scores/comparison           comparison table
//	GET    /scores/:query_id/:brand     one score record
//	GET    /snapshots/:id               raw answer snapshot
//
// plus GET /health and, when metrics are enabled, GET /metrics.
package httpapi
