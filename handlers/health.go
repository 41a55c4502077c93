package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"swasthsetu/database"
	"swasthsetu/version"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthCheck reports service liveness and database connectivity.
func HealthCheck(c *gin.Context) {
	dbHealthy := database.SQLiteUp(c.Request.Context())

	rooms, clients := 0, 0
	if Hub != nil {
		rooms, clients = Hub.Stats()
	}

	health := gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().Unix(),
		"version":        version.GetVersion(),
		"db_healthy":     dbHealthy,
		"active_rooms":   rooms,
		"active_clients": clients,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

// GetMetrics returns a JSON snapshot of runtime and application metrics.
func GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rooms, clients := 0, 0
	if Hub != nil {
		rooms, clients = Hub.Stats()
	}

	metrics := gin.H{
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": int64(time.Since(startTime).Seconds()),
		"sqlite": gin.H{
			"up":                  database.SQLiteUp(c.Request.Context()),
			"busy_errors_total":   database.SQLiteBusyErrorsTotal(),
			"locked_errors_total": database.SQLiteLockedErrorsTotal(),
			"slow_queries_total":  database.SQLiteSlowQueriesTotal(),
		},
		"signaling": gin.H{
			"rooms":   rooms,
			"clients": clients,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": mem.Alloc,
			"memory_total": mem.TotalAlloc,
			"memory_sys":   mem.Sys,
			"gc_runs":      mem.NumGC,
		},
	}

	c.JSON(http.StatusOK, metrics)
}

func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// GetPrometheusMetrics writes the same metrics in Prometheus exposition format.
func GetPrometheusMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rooms, clients := 0, 0
	if Hub != nil {
		rooms, clients = Hub.Stats()
	}

	var buf bytes.Buffer

	buf.WriteString("# HELP swasthsetu_build_info Build information.\n")
	buf.WriteString("# TYPE swasthsetu_build_info gauge\n")
	fmt.Fprintf(
		&buf,
		"swasthsetu_build_info{version=\"%s\",commit=\"%s\",build_time=\"%s\"} 1\n",
		promLabelEscape(version.Version),
		promLabelEscape(version.CommitHash),
		promLabelEscape(version.BuildTime),
	)

	buf.WriteString("# HELP swasthsetu_sqlite_up SQLite connectivity (1=up, 0=down).\n")
	buf.WriteString("# TYPE swasthsetu_sqlite_up gauge\n")
	if database.SQLiteUp(c.Request.Context()) {
		buf.WriteString("swasthsetu_sqlite_up 1\n")
	} else {
		buf.WriteString("swasthsetu_sqlite_up 0\n")
	}

	buf.WriteString("# HELP swasthsetu_sqlite_busy_errors_total Total SQLite busy errors observed.\n")
	buf.WriteString("# TYPE swasthsetu_sqlite_busy_errors_total counter\n")
	fmt.Fprintf(&buf, "swasthsetu_sqlite_busy_errors_total %d\n", database.SQLiteBusyErrorsTotal())

	buf.WriteString("# HELP swasthsetu_sqlite_locked_errors_total Total SQLite locked errors observed.\n")
	buf.WriteString("# TYPE swasthsetu_sqlite_locked_errors_total counter\n")
	fmt.Fprintf(&buf, "swasthsetu_sqlite_locked_errors_total %d\n", database.SQLiteLockedErrorsTotal())

	buf.WriteString("# HELP swasthsetu_sqlite_slow_queries_total Queries slower than the slow-query threshold.\n")
	buf.WriteString("# TYPE swasthsetu_sqlite_slow_queries_total counter\n")
	fmt.Fprintf(&buf, "swasthsetu_sqlite_slow_queries_total %d\n", database.SQLiteSlowQueriesTotal())

	buf.WriteString("# HELP swasthsetu_signaling_rooms Active signaling rooms.\n")
	buf.WriteString("# TYPE swasthsetu_signaling_rooms gauge\n")
	fmt.Fprintf(&buf, "swasthsetu_signaling_rooms %d\n", rooms)

	buf.WriteString("# HELP swasthsetu_signaling_clients Connected signaling clients.\n")
	buf.WriteString("# TYPE swasthsetu_signaling_clients gauge\n")
	fmt.Fprintf(&buf, "swasthsetu_signaling_clients %d\n", clients)

	buf.WriteString("# HELP swasthsetu_goroutines Current number of goroutines.\n")
	buf.WriteString("# TYPE swasthsetu_goroutines gauge\n")
	fmt.Fprintf(&buf, "swasthsetu_goroutines %d\n", runtime.NumGoroutine())

	buf.WriteString("# HELP swasthsetu_memory_alloc_bytes Bytes of allocated heap objects.\n")
	buf.WriteString("# TYPE swasthsetu_memory_alloc_bytes gauge\n")
	fmt.Fprintf(&buf, "swasthsetu_memory_alloc_bytes %d\n", mem.Alloc)

	buf.WriteString("# HELP swasthsetu_uptime_seconds Seconds since process start.\n")
	buf.WriteString("# TYPE swasthsetu_uptime_seconds counter\n")
	fmt.Fprintf(&buf, "swasthsetu_uptime_seconds %d\n", int64(time.Since(startTime).Seconds()))

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// GetVersion returns build information.
func GetVersion(c *gin.Context) {
	ok(c, gin.H{
		"version":    version.GetVersion(),
		"commit":     version.CommitHash,
		"build_time": version.BuildTime,
	})
}
