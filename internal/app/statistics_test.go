package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunningMean(t *testing.T) {
	tests := []struct {
		name      string
		avg       int
		total     int
		buildTime int
		want      int
	}{
		{name: "no builds yet", avg: 0, total: 0, buildTime: 42, want: 42},
		{name: "first sample", avg: 100, total: 1, buildTime: 42, want: 42},
		{name: "second sample", avg: 60, total: 2, buildTime: 120, want: 90},
		{name: "rounding", avg: 10, total: 3, buildTime: 11, want: 10},
		{name: "rounding up", avg: 10, total: 2, buildTime: 11, want: 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RunningMean(tt.avg, tt.total, tt.buildTime))
		})
	}
}
