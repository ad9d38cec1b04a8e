package clickhouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalEventsDDL_DeduplicatesAcrossReceiveTimes(t *testing.T) {
	ddl := strings.Join(strings.Fields(signalEventsDDL), " ")

	assert.Contains(t, ddl, "ENGINE = ReplacingMergeTree(version)")
	assert.Contains(t, ddl, "ORDER BY (event_id)")
	// Copies of one event received in different months must share a partition
	assert.NotContains(t, ddl, "PARTITION BY")
}
