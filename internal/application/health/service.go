package health

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"planora-backend/internal/middleware"
)

// DBPinger is optional; nil reports the database as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int    `json:"totalRequests"`
	SuccessCount    int    `json:"successCount"`
	FailedCount     int    `json:"failedCount"`
	SuccessRate     string `json:"successRate"`
	AvgResponseTime string `json:"avgResponseTime"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

var processStart = time.Now()

// CollectHealth pings the DB and Redis and folds the request counters the
// HealthMarker middleware keeps in Redis.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{
		Status:       "ok",
		Dependencies: make(map[string]DepStatus),
		Runtime: RuntimeInfo{
			UptimeSeconds: int64(time.Since(processStart).Seconds()),
			Goroutines:    runtime.NumGoroutine(),
			Platform:      runtime.GOOS,
			GoVersion:     runtime.Version(),
		},
		Traffic: TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"

			totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
			totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
			totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
			resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()

			result.Traffic.TotalRequests, _ = strconv.Atoi(totalReq)
			result.Traffic.FailedCount, _ = strconv.Atoi(totalErr)
			result.Traffic.SuccessCount = result.Traffic.TotalRequests - result.Traffic.FailedCount
			if result.Traffic.TotalRequests > 0 {
				rate := float64(result.Traffic.SuccessCount) / float64(result.Traffic.TotalRequests) * 100
				result.Traffic.SuccessRate = strconv.FormatFloat(rate, 'f', 1, 64)
			}
			timeSum, _ := strconv.ParseFloat(totalTime, 64)
			countSum, _ := strconv.Atoi(resCount)
			if countSum > 0 {
				result.Traffic.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
			}
		} else {
			redisStatus = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	return result
}
