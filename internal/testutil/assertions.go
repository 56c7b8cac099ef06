package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// draftErrorBody mirrors the structured error envelope draft endpoints write
type draftErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AssertDraftErrorCode verifies a structured draft error response carries
// the expected status and error code
func AssertDraftErrorCode(t *testing.T, resp *http.Response, expectedStatus int, expectedCode string) {
	t.Helper()

	require.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var parsed draftErrorBody
	err = json.Unmarshal(body, &parsed)
	require.NoError(t, err, "failed to unmarshal error response: %s", string(body))
	assert.Equal(t, expectedCode, parsed.Error.Code, "unexpected error code, message: %s", parsed.Error.Message)
}
