package obs

import (
	"context"
	"time"

	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/platform/metrics"
)

// Time starts timing op; call the returned func with a pointer to the
// named error result when the operation returns.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)
		log := logging.FromContext(ctx)

		if errp != nil && *errp != nil {
			metrics.OpDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			log.Warn().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).Msg("operation failed")
			return
		}
		metrics.OpDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		log.Debug().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("operation done")
	}
}
