package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLLMCall(t *testing.T) {
	before := testutil.ToFloat64(llmCallsTotal.WithLabelValues("writer", "gemini", "false"))
	ObserveLLMCall("writer", "gemini", false, 1500*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(llmCallsTotal.WithLabelValues("writer", "gemini", "false")))
}

func TestDraftCreated(t *testing.T) {
	before := testutil.ToFloat64(draftsTotal.WithLabelValues("APPROVED"))
	DraftCreated("APPROVED")
	DraftCreated("APPROVED")
	assert.Equal(t, before+2, testutil.ToFloat64(draftsTotal.WithLabelValues("APPROVED")))
}
