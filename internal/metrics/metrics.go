package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifyhub_dispatch_total",
		Help: "Successfully committed dispatch operations.",
	})

	DispatchRecipients = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifyhub_dispatch_recipients_total",
		Help: "Delivery records created by committed dispatches.",
	})

	PushDeliveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyhub_push_delivery_total",
		Help: "Push delivery task terminations by outcome.",
	}, []string{"outcome"})
)
