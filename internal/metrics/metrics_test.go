package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCount(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LikeOp("like", nil)
	m.LikeOp("like", errors.New("dup"))
	m.LikeOp("like", nil)
	m.ObserveRequest("GET", "/api/tweets", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Likes.WithLabelValues("like", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Likes.WithLabelValues("like", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/tweets", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LikeOp("like", nil)
		m.ObserveFeed(time.Second, 3)
		m.Upload(nil)
		m.Relayed(nil)
		m.TweetOp("create")
		m.FollowOp("follow", nil)
	})
}
