package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

// Details are static facts reported by the detailed health check.
type Details struct {
	DBDriver      string
	QuoteMode     string
	EventsEnabled bool
}

type HealthService struct {
	db      *sql.DB
	cache   port.IssuedQuoteCache
	details Details
}

// NewHealthService creates the health service. cache may be nil when Redis
// is not configured; that is reported but does not degrade the status.
func NewHealthService(db *sql.DB, cache port.IssuedQuoteCache, details Details) port.HealthService {
	return &HealthService{
		db:      db,
		cache:   cache,
		details: details,
	}
}

func (s *HealthService) GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status := &domain.HealthStatus{
		Components: make(map[string]string),
		Timestamp:  time.Now().Unix(),
	}

	dbHealthy := true
	cacheHealthy := true

	// Check database
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			status.Components["database"] = "unhealthy"
			dbHealthy = false
		} else {
			status.Components["database"] = "healthy"
		}
	} else {
		status.Components["database"] = "unavailable"
		dbHealthy = false
	}

	// Check Redis
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			status.Components["cache"] = "unhealthy"
			cacheHealthy = false
		} else {
			status.Components["cache"] = "healthy"
		}
	} else {
		status.Components["cache"] = "disabled"
	}

	// Determine overall status
	switch {
	case !dbHealthy:
		status.Status = "unhealthy"
		status.Message = "Database is down"
	case !cacheHealthy:
		status.Status = "degraded"
		status.Message = "Issued quote cache is not reachable"
	default:
		status.Status = "healthy"
		status.Message = "All systems operational"
	}

	return status, nil
}

func (s *HealthService) GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status, err := s.GetSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	if s.details.DBDriver != "" {
		status.Components["database_driver"] = s.details.DBDriver
	}
	if s.details.QuoteMode != "" {
		status.Components["quote_mode"] = s.details.QuoteMode
	}
	if s.details.EventsEnabled {
		status.Components["order_events"] = "enabled"
	} else {
		status.Components["order_events"] = "disabled"
	}

	if s.db != nil {
		stats := s.db.Stats()
		if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
			status.Components["database_pool"] = "saturated"
		} else {
			status.Components["database_pool"] = "healthy"
		}
	}

	return status, nil
}
