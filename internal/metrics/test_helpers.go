package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// GaugeValue returns the current value of a gauge vector for the given labels.
func GaugeValue(metric *prometheus.GaugeVec, labels prometheus.Labels) (float64, error) {
	pb := &dto.Metric{}
	if err := metric.With(labels).Write(pb); err != nil {
		return 0, err
	}
	return pb.GetGauge().GetValue(), nil
}

// CounterValue returns the current value of a counter vector for the given labels.
func CounterValue(metric *prometheus.CounterVec, labels prometheus.Labels) (float64, error) {
	pb := &dto.Metric{}
	if err := metric.With(labels).Write(pb); err != nil {
		return 0, err
	}
	return pb.GetCounter().GetValue(), nil
}

// HistogramCount returns the number of observations of a histogram vector for the given labels.
func HistogramCount(metric *prometheus.HistogramVec, labels prometheus.Labels) (uint64, error) {
	observer, err := metric.GetMetricWith(labels)
	if err != nil {
		return 0, err
	}
	pb := &dto.Metric{}
	if err := observer.(prometheus.Metric).Write(pb); err != nil {
		return 0, err
	}
	return pb.GetHistogram().GetSampleCount(), nil
}
