package threads

import "github.com/prometheus/client_golang/prometheus"

var commentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "itte_comments_total",
		Help: "Comments posted, edited and returned by list.",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(commentsTotal)
}
