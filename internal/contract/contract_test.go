package contract

import (
	"fmt"
	"testing"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf_MatchesApp(t *testing.T) {
	err := fmt.Errorf("ask: %w", app.NewError(app.ErrStoreQueryRejected, "syntax error"))
	assert.Equal(t, ErrStoreQueryRejected, CodeOf(err))
}

func TestNewRecommendRequest_Defaults(t *testing.T) {
	req := NewRecommendRequest("1001", 5)
	assert.Equal(t, "1001", req.DepotID)
	assert.Equal(t, 5, req.TopN)
	assert.Zero(t, req.MinOrderFrequency, "zero means use configured default")
	assert.Zero(t, req.CaptureRate)
}
