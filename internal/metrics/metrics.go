package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 所有方法对 nil 接收者是空操作，测试里可以直接传 nil
type Metrics struct {
	Requests      *prometheus.CounterVec
	RequestTime   *prometheus.HistogramVec
	FeedAssembly  prometheus.Histogram
	FeedSize      prometheus.Histogram
	Tweets        *prometheus.CounterVec
	Likes         *prometheus.CounterVec
	Follows       *prometheus.CounterVec
	Uploads       *prometheus.CounterVec
	OutboxRelayed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "microblog_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FeedAssembly: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "microblog_feed_assembly_seconds",
			Help:    "Time spent assembling a viewer feed",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		FeedSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "microblog_feed_items",
			Help:    "Number of items returned per feed",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		Tweets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_tweets_total",
				Help: "Tweets created and deleted",
			},
			[]string{"op"},
		),
		Likes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_likes_total",
				Help: "Like and unlike operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		Follows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_follows_total",
				Help: "Follow and unfollow operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_uploads_total",
				Help: "Media uploads by outcome",
			},
			[]string{"outcome"},
		),
		OutboxRelayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_outbox_relayed_total",
				Help: "Outbox events relayed to the broker",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Requests, m.RequestTime, m.FeedAssembly, m.FeedSize,
			m.Tweets, m.Likes, m.Follows, m.Uploads, m.OutboxRelayed,
		)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFeed(elapsed time.Duration, items int) {
	if m == nil {
		return
	}
	m.FeedAssembly.Observe(elapsed.Seconds())
	m.FeedSize.Observe(float64(items))
}

func (m *Metrics) TweetOp(op string) {
	if m == nil {
		return
	}
	m.Tweets.WithLabelValues(op).Inc()
}

func (m *Metrics) LikeOp(op string, err error) {
	if m == nil {
		return
	}
	m.Likes.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) FollowOp(op string, err error) {
	if m == nil {
		return
	}
	m.Follows.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) Upload(err error) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) Relayed(err error) {
	if m == nil {
		return
	}
	m.OutboxRelayed.WithLabelValues(outcome(err)).Inc()
}
