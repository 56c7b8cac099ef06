package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const apiBase = "http://localhost:8080/api/v1"

type Manager struct {
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Token       string `json:"token"`
	UserID      string `json:"userId"`
}

type League struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SpectatorToken string `json:"spectatorToken"`
}

type Captain struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
}

type RegisterResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
}

func registerManager(displayName, password string) (*Manager, error) {
	body, _ := json.Marshal(map[string]string{
		"displayName": displayName,
		"password":    password,
	})

	resp, err := http.Post(apiBase+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &Manager{
		DisplayName: result.User.DisplayName,
		Password:    password,
		Token:       result.AccessToken,
		UserID:      result.User.ID,
	}, nil
}

func postJSON(token, path string, body map[string]interface{}, out interface{}) error {
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("POST", apiBase+path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (%d): %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

func generateUsername() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("demo_manager_%d_%s", time.Now().Unix(), string(random))
}

func main() {
	captainNames := []string{"Aurora", "Blaze", "Cinder", "Drift"}
	playerNames := []string{
		"Quinn", "Reese", "Sawyer", "Tatum", "Urban", "Vesper",
		"Wren", "Xander", "Yara", "Zephyr", "Arlo", "Briar",
		"Cove", "Dune", "Ember", "Flint",
	}

	fmt.Println("Seeding demo league...")
	fmt.Println()

	password := "testpassword123"

	fmt.Println("Registering manager...")
	manager, err := registerManager(generateUsername(), password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register manager: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Manager: %s\n", manager.DisplayName)

	fmt.Println("\nCreating league...")
	var league League
	err = postJSON(manager.Token, "/leagues", map[string]interface{}{
		"name":             "Demo League",
		"draftAlgorithm":   "snake",
		"timeLimitSeconds": 60,
	}, &league)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create league: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  League: %s (%s)\n", league.Name, league.ID)

	fmt.Println("\nAdding captains...")
	var captains []*Captain
	for _, name := range captainNames {
		var captain Captain
		err = postJSON(manager.Token, "/leagues/"+league.ID+"/captains", map[string]interface{}{
			"name": name,
		}, &captain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add captain %s: %v\n", name, err)
			os.Exit(1)
		}
		captains = append(captains, &captain)
		fmt.Printf("  Captain: %s\n", name)
	}

	fmt.Println("\nAdding players...")
	for _, name := range playerNames {
		err = postJSON(manager.Token, "/leagues/"+league.ID+"/players", map[string]interface{}{
			"name": name,
		}, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add player %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("  %d players added\n", len(playerNames))

	fmt.Println("\n" + "============================================================")
	fmt.Println("DEMO LEAGUE READY")
	fmt.Println("============================================================")

	fmt.Println("\nLeague Info:")
	fmt.Printf("  ID:              %s\n", league.ID)
	fmt.Printf("  Spectator token: %s\n", league.SpectatorToken)

	fmt.Printf("\nManager login: %s / %s\n", manager.DisplayName, manager.Password)

	fmt.Println("\nCaptain tokens:")
	for _, captain := range captains {
		fmt.Printf("  %-8s %s\n", captain.Name, captain.AccessToken)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Start the draft as the manager:")
	fmt.Printf("     curl -X POST %s/leagues/%s/start -H 'Authorization: Bearer %s'\n", apiBase, league.ID, manager.Token)
	fmt.Println("  2. Connect captains over /api/v1/ws with JOIN_LEAGUE and their token")
	fmt.Println("  3. Submit picks via POST /leagues/{id}/picks")

	// Output JSON for programmatic use
	output := map[string]interface{}{
		"league": map[string]string{
			"id":             league.ID,
			"spectatorToken": league.SpectatorToken,
		},
		"manager":  manager,
		"captains": captains,
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("JSON OUTPUT (for scripts):")
	fmt.Println("============================================================")
	jsonOutput, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonOutput))
}
