package main

import (
	"testing"

	"stockingest/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewScheduler(t *testing.T) {
	sched, err := newScheduler(config.IngestConfig{Schedule: "0 30 6 * * 2-6", Timezone: "Asia/Kolkata"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, sched)

	_, err = newScheduler(config.IngestConfig{Schedule: "0 30 6 * * 2-6", Timezone: "Mars/Olympus"}, zap.NewNop())
	assert.ErrorContains(t, err, "ingest.timezone")

	_, err = newScheduler(config.IngestConfig{Schedule: "30 6 * * *"}, zap.NewNop())
	assert.Error(t, err)
}
