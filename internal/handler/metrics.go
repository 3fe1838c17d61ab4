package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var scanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "visitor_scan_total",
	Help: "QR scan attempts by endpoint and outcome.",
}, []string{"endpoint", "outcome"})
