package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueEntryResponse struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

func TestQueueHandler_CaptainFlow(t *testing.T) {
	ds := newDraftServer(t)
	c1 := ds.captains[0]

	t.Run("starts empty", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "GET", "/queue", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []queueEntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		assert.Empty(t, entries)
	})

	t.Run("appends in order", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "POST", "/queue", map[string]string{"playerId": ds.players[2]})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = ds.asCaptain(t, c1, "POST", "/queue", map[string]string{"playerId": ds.players[0]})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []queueEntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		require.Len(t, entries, 2)
		assert.Equal(t, ds.players[2], entries[0].PlayerID)
		assert.Equal(t, 1, entries[0].Position)
		assert.Equal(t, ds.players[0], entries[1].PlayerID)
		assert.Equal(t, 2, entries[1].Position)
	})

	t.Run("re-adding changes nothing", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "POST", "/queue", map[string]string{"playerId": ds.players[2]})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []queueEntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		assert.Len(t, entries, 2)
	})

	t.Run("unknown player is 404", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "POST", "/queue", map[string]string{"playerId": uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("reorders with a permutation", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "PUT", "/queue/order",
			map[string][]string{"order": {ds.players[0], ds.players[2]}})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []queueEntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		require.Len(t, entries, 2)
		assert.Equal(t, ds.players[0], entries[0].PlayerID)
		assert.Equal(t, ds.players[2], entries[1].PlayerID)
	})

	t.Run("rejects a partial reorder", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "PUT", "/queue/order",
			map[string][]string{"order": {ds.players[0]}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("removal compacts positions", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "DELETE", "/queue/"+ds.players[0], nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []queueEntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		require.Len(t, entries, 1)
		assert.Equal(t, ds.players[2], entries[0].PlayerID)
		assert.Equal(t, 1, entries[0].Position)
	})

	t.Run("removing an absent player is 404", func(t *testing.T) {
		resp := ds.asCaptain(t, c1, "DELETE", "/queue/"+ds.players[3], nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("queued players already drafted are rejected", func(t *testing.T) {
		resp := ds.asManager(t, "POST", "/start", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = ds.asCaptain(t, c1, "POST", "/picks", map[string]any{
			"captainId":         c1.id,
			"playerId":          ds.players[1],
			"expectedPickIndex": 0,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = ds.asCaptain(t, ds.captains[1], "POST", "/queue",
			map[string]string{"playerId": ds.players[1]})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestQueueHandler_AutoPickToggle(t *testing.T) {
	ds := newDraftServer(t)
	c1 := ds.captains[0]

	resp := ds.asCaptain(t, c1, "PUT", "/autopick", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var captain captainResponse
	testutil.AssertJSONResponse(t, resp, &captain)
	assert.True(t, captain.AutoPickEnabled)
	assert.Empty(t, captain.AccessToken)

	resp = ds.asCaptain(t, c1, "PUT", "/autopick", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.AssertJSONResponse(t, resp, &captain)
	assert.False(t, captain.AutoPickEnabled)
}

func TestQueueHandler_RequiresACaptainSeat(t *testing.T) {
	ds := newDraftServer(t)

	t.Run("manager has no queue", func(t *testing.T) {
		resp := ds.asManager(t, "GET", "/queue", nil)
		testutil.AssertDraftErrorCode(t, resp, http.StatusForbidden, "TOKEN_MISMATCH")
	})

	t.Run("spectator cannot queue", func(t *testing.T) {
		req := testutil.CreateDraftTokenRequest(t, "POST", ds.url("/queue"),
			map[string]string{"playerId": ds.players[0]}, ds.spectatorToken)
		resp := doRequest(t, req)
		testutil.AssertDraftErrorCode(t, resp, http.StatusForbidden, "TOKEN_MISMATCH")
	})
}
