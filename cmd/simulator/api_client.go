package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type League struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DraftAlgorithm   string `json:"draftAlgorithm"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
	Status           string `json:"status"`
	CurrentPickIndex int    `json:"currentPickIndex"`
	SpectatorToken   string `json:"spectatorToken"`
}

type Captain struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DraftPosition int    `json:"draftPosition"`
	AccessToken   string `json:"accessToken"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Snapshot struct {
	League struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		CurrentPickIndex int    `json:"currentPickIndex"`
		TimeLimitSeconds int    `json:"timeLimitSeconds"`
	} `json:"league"`
	Captains []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"captains"`
	Players []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
	Picks []struct {
		PickNumber int    `json:"pickNumber"`
		CaptainID  string `json:"captainId"`
		PlayerID   string `json:"playerId"`
		IsAutoPick bool   `json:"isAutoPick"`
	} `json:"picks"`
	AvailablePlayerIDs []string `json:"availablePlayerIds"`
	CurrentCaptainID   *string  `json:"currentCaptainId"`
	TotalPicks         int      `json:"totalPicks"`
	GraceSeconds       int      `json:"graceSeconds"`
}

// RegisterUser creates a new user account
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// CreateLeague creates a new league owned by the token's user
func (c *APIClient) CreateLeague(token, name, algorithm string, timeLimitSeconds int) (*League, error) {
	body := map[string]interface{}{
		"name":             name,
		"draftAlgorithm":   algorithm,
		"timeLimitSeconds": timeLimitSeconds,
	}

	resp, err := c.post("/leagues", body, token)
	if err != nil {
		return nil, fmt.Errorf("create league request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create league failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var league League
	if err := json.NewDecoder(resp.Body).Decode(&league); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &league, nil
}

// AddCaptain adds a drafting seat; the response carries its access token
func (c *APIClient) AddCaptain(token, leagueID, name string) (*Captain, error) {
	body := map[string]string{"name": name}

	resp, err := c.post("/leagues/"+leagueID+"/captains", body, token)
	if err != nil {
		return nil, fmt.Errorf("add captain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add captain failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var captain Captain
	if err := json.NewDecoder(resp.Body).Decode(&captain); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &captain, nil
}

// AddPlayer adds a draftable player to the pool
func (c *APIClient) AddPlayer(token, leagueID, name string) (*Player, error) {
	body := map[string]string{"name": name}

	resp, err := c.post("/leagues/"+leagueID+"/players", body, token)
	if err != nil {
		return nil, fmt.Errorf("add player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add player failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var player Player
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &player, nil
}

// StartDraft starts the league's draft
func (c *APIClient) StartDraft(token, leagueID string) error {
	resp, err := c.post("/leagues/"+leagueID+"/start", nil, token)
	if err != nil {
		return fmt.Errorf("start draft request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("start draft failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// GetSnapshot fetches the authoritative draft state
func (c *APIClient) GetSnapshot(leagueID, draftToken string) (*Snapshot, error) {
	resp, err := c.getDraft("/leagues/"+leagueID+"/snapshot", draftToken)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("snapshot failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &snapshot, nil
}

// SubmitPick commits a pick as the captain holding draftToken. A 409 means
// the draft moved on; callers re-fetch the snapshot and retry.
func (c *APIClient) SubmitPick(leagueID, draftToken, captainID, playerID string, expectedPickIndex int) (bool, error) {
	body := map[string]interface{}{
		"captainId":         captainID,
		"playerId":          playerID,
		"expectedPickIndex": expectedPickIndex,
	}

	resp, err := c.postDraft("/leagues/"+leagueID+"/picks", body, draftToken)
	if err != nil {
		return false, fmt.Errorf("submit pick request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusConflict:
		return false, nil
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("submit pick failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
}

// SetAutoPick flips the captain's autodraft toggle
func (c *APIClient) SetAutoPick(leagueID, draftToken string, enabled bool) error {
	body := map[string]bool{"enabled": enabled}

	resp, err := c.putDraft("/leagues/"+leagueID+"/autopick", body, draftToken)
	if err != nil {
		return fmt.Errorf("set autopick request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("set autopick failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// HTTP helpers. JWT goes in the Authorization header; league tokens
// (captain or spectator) go in X-Draft-Token.

func (c *APIClient) getDraft(path, draftToken string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if draftToken != "" {
		req.Header.Set("X-Draft-Token", draftToken)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	return c.send("POST", path, body, token, "")
}

func (c *APIClient) postDraft(path string, body interface{}, draftToken string) (*http.Response, error) {
	return c.send("POST", path, body, "", draftToken)
}

func (c *APIClient) putDraft(path string, body interface{}, draftToken string) (*http.Response, error) {
	return c.send("PUT", path, body, "", draftToken)
}

func (c *APIClient) send(method, path string, body interface{}, token, draftToken string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if draftToken != "" {
		req.Header.Set("X-Draft-Token", draftToken)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
