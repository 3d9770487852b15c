// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package api

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"

	"github.com/eduseek/eduseek/internal/platform/constants"
	"github.com/eduseek/eduseek/internal/platform/ctxutil"
	"github.com/eduseek/eduseek/internal/platform/postgres"
	"github.com/eduseek/eduseek/internal/platform/redis"
	"github.com/eduseek/eduseek/internal/platform/respond"
)

// # Health Probes

// Liveness reports that the process is up. It never touches dependencies, so
// an orchestrator will not restart the pod just because a backend is down.
func Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldService: constants.AppName,
	})
}

// Readiness reports whether the server can usefully serve traffic: both the
// account database and the token registry must answer a ping.
func Readiness(pool *pgxpool.Pool, cache *redisclient.Client) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		checks := map[string]string{}
		healthy := true

		start := time.Now()
		if err := postgres.Ping(ctx, pool); err != nil {
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}

		if err := redis.Ping(ctx, cache); err != nil {
			checks["cache"] = "unreachable"
			healthy = false
		} else {
			checks["cache"] = "ok"
		}

		if !healthy {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "readiness_check_failed",
				"checks", checks,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			respond.JSON(writer, http.StatusServiceUnavailable, checks)
			return
		}

		respond.OK(writer, checks)
	}
}
