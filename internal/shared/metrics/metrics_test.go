package metrics_test

import (
	"testing"

	"go-attendance/internal/shared/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRejectionsCountsByReason(t *testing.T) {
	before := testutil.ToFloat64(metrics.Rejections.WithLabelValues("duplicate_intent"))
	metrics.Rejections.WithLabelValues("duplicate_intent").Inc()
	after := testutil.ToFloat64(metrics.Rejections.WithLabelValues("duplicate_intent"))

	assert.Equal(t, before+1, after)
}
