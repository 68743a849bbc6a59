package export

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/sells-group/roster-cli/internal/resilience"
	"github.com/sells-group/roster-cli/pkg/google"
	"github.com/sells-group/roster-cli/pkg/google/mocks"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1,
	}
}

func TestSheetsSink_WriteGrid(t *testing.T) {
	client := mocks.NewMockClient(t)
	rows := [][]any{{nil, "10", 1.5}}
	client.On("UpdateValues", mock.Anything, "sheet-123", "Sheet1!A4:AO4", rows).
		Return(&google.UpdateResult{UpdatedRange: "Sheet1!A4:AO4", UpdatedRows: 1, UpdatedCells: 3}, nil).Once()

	sink := NewSheetsSink(client, "sheet-123", 0, fastRetry())
	require.NoError(t, sink.WriteGrid(context.Background(), "Sheet1!A4:AO4", rows))
}

func TestSheetsSink_RetriesTransient(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("UpdateValues", mock.Anything, "sheet-123", mock.Anything, mock.Anything).
		Return(nil, &googleapi.Error{Code: http.StatusServiceUnavailable}).Once()
	client.On("UpdateValues", mock.Anything, "sheet-123", mock.Anything, mock.Anything).
		Return(&google.UpdateResult{UpdatedRows: 1}, nil).Once()

	sink := NewSheetsSink(client, "sheet-123", 1000, fastRetry())
	require.NoError(t, sink.WriteGrid(context.Background(), "Sheet1!A4:AO4", [][]any{{"x"}}))
}

func TestSheetsSink_PermanentError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("UpdateValues", mock.Anything, "sheet-123", mock.Anything, mock.Anything).
		Return(nil, &googleapi.Error{Code: http.StatusBadRequest, Message: "bad range"}).Once()

	sink := NewSheetsSink(client, "sheet-123", 0, fastRetry())
	err := sink.WriteGrid(context.Background(), "Nope!A1", [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: sheets write Nope!A1")
}

func TestSheetsSink_NoSpreadsheet(t *testing.T) {
	client := mocks.NewMockClient(t)

	err := NewSheetsSink(client, "", 0, fastRetry()).WriteGrid(context.Background(), "Sheet1!A1", nil)
	require.Error(t, err)
	client.AssertNotCalled(t, "UpdateValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
