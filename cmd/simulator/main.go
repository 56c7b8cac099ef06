package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "seed":
		seedCmd(apiURL, args)
	case "watch":
		watchCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Draft Simulator - Development tool for exercising a running server

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Create a league, seed captains and players, start, and drive
            every pick over REST until the draft completes
  seed      Create a league with captains and players but do not start it;
            prints the tokens so you can drive it from the UI
  watch     Poll a league's snapshot and print progress until completion
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Run a 3-captain, 12-player snake draft end to end
  simulator full

  # Bigger round-robin draft, captains pick every 200ms
  simulator full --captains=6 --players=30 --algorithm=round_robin --delay=200ms

  # Enable autodraft for every captain and let the scheduler finish it
  simulator full --autodraft

  # Seed a league for manual testing and print its tokens
  simulator seed --captains=4 --players=16

  # Watch an in-progress draft (spectator token required)
  simulator watch --league=<id> --token=<spectator token>`)
}

type seededLeague struct {
	league       *League
	managerToken string
	captains     []*Captain
	players      []*Player
}

// seedLeague registers a manager and builds a complete league over REST.
func seedLeague(client *APIClient, captains, players, timeLimit int, algorithm string) (*seededLeague, error) {
	fmt.Print("Creating manager and league... ")
	manager, managerToken, err := client.RegisterUser("DraftManager")
	if err != nil {
		return nil, err
	}

	league, err := client.CreateLeague(managerToken, "Simulated League", algorithm, timeLimit)
	if err != nil {
		return nil, err
	}
	fmt.Printf("OK (manager: %s, league: %s)\n", manager.DisplayName, league.ID)

	out := &seededLeague{league: league, managerToken: managerToken}

	fmt.Printf("Adding %d captains:\n", captains)
	for i := 0; i < captains; i++ {
		captain, err := client.AddCaptain(managerToken, league.ID, fmt.Sprintf("Captain%d", i+1))
		if err != nil {
			return nil, err
		}
		out.captains = append(out.captains, captain)
		fmt.Printf("  [%d/%d] %s (position %d)\n", i+1, captains, captain.Name, captain.DraftPosition)
	}

	fmt.Printf("Adding %d players... ", players)
	for i := 0; i < players; i++ {
		player, err := client.AddPlayer(managerToken, league.ID, fmt.Sprintf("Player%d", i+1))
		if err != nil {
			return nil, err
		}
		out.players = append(out.players, player)
	}
	fmt.Println("OK")

	return out, nil
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	captains := fs.Int("captains", 3, "Number of captains")
	players := fs.Int("players", 12, "Number of players in the pool")
	timeLimit := fs.Int("limit", 30, "Per-pick time limit in seconds")
	algorithm := fs.String("algorithm", "snake", "Draft order: snake or round_robin")
	delay := fs.Duration("delay", 500*time.Millisecond, "Delay between picks")
	autodraft := fs.Bool("autodraft", false, "Enable autodraft for every captain and let the server draft")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("=== Draft Simulator: Full Flow ===")
	fmt.Println()

	seeded, err := seedLeague(client, *captains, *players, *timeLimit, *algorithm)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}

	tokenByCaptain := make(map[string]*Captain)
	for _, captain := range seeded.captains {
		tokenByCaptain[captain.ID] = captain
	}

	if *autodraft {
		fmt.Print("Enabling autodraft for every captain... ")
		for _, captain := range seeded.captains {
			if err := client.SetAutoPick(seeded.league.ID, captain.AccessToken, true); err != nil {
				fmt.Printf("FAILED\n  Error: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Println("OK")
	}

	fmt.Print("Starting draft... ")
	if err := client.StartDraft(seeded.managerToken, seeded.league.ID); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
	fmt.Println()

	spectator := seeded.league.SpectatorToken

	for {
		snapshot, err := client.GetSnapshot(seeded.league.ID, spectator)
		if err != nil {
			fmt.Printf("Snapshot failed: %v\n", err)
			os.Exit(1)
		}

		if snapshot.League.Status == "completed" {
			break
		}
		if snapshot.CurrentCaptainID == nil || len(snapshot.AvailablePlayerIDs) == 0 {
			time.Sleep(*delay)
			continue
		}

		if *autodraft {
			// The scheduler is drafting; just report progress.
			fmt.Printf("  pick %d/%d committed server-side\n", snapshot.League.CurrentPickIndex, snapshot.TotalPicks)
			time.Sleep(*delay)
			continue
		}

		captain := tokenByCaptain[*snapshot.CurrentCaptainID]
		playerID := snapshot.AvailablePlayerIDs[rand.Intn(len(snapshot.AvailablePlayerIDs))]

		committed, err := client.SubmitPick(seeded.league.ID, captain.AccessToken, captain.ID, playerID, snapshot.League.CurrentPickIndex)
		if err != nil {
			fmt.Printf("Pick failed: %v\n", err)
			os.Exit(1)
		}
		if committed {
			fmt.Printf("  [%d/%d] %s picked\n", snapshot.League.CurrentPickIndex+1, snapshot.TotalPicks, captain.Name)
		}
		// A conflict means the draft moved on; the next snapshot resolves it.

		time.Sleep(*delay)
	}

	final, err := client.GetSnapshot(seeded.league.ID, spectator)
	if err != nil {
		fmt.Printf("Final snapshot failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  DRAFT COMPLETED")
	fmt.Println("=========================================")
	fmt.Println()
	autoPicks := 0
	for _, pick := range final.Picks {
		if pick.IsAutoPick {
			autoPicks++
		}
	}
	fmt.Printf("  League:     %s\n", seeded.league.ID)
	fmt.Printf("  Picks:      %d (%d auto)\n", len(final.Picks), autoPicks)
	fmt.Printf("  Algorithm:  %s\n", seeded.league.DraftAlgorithm)
	fmt.Println()
}

func seedCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	captains := fs.Int("captains", 3, "Number of captains")
	players := fs.Int("players", 12, "Number of players in the pool")
	timeLimit := fs.Int("limit", 60, "Per-pick time limit in seconds")
	algorithm := fs.String("algorithm", "snake", "Draft order: snake or round_robin")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	seeded, err := seedLeague(client, *captains, *players, *timeLimit, *algorithm)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  LEAGUE SEEDED (not started)")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  League ID:       %s\n", seeded.league.ID)
	fmt.Printf("  Manager JWT:     %s\n", seeded.managerToken)
	fmt.Printf("  Spectator token: %s\n", seeded.league.SpectatorToken)
	fmt.Println()
	fmt.Println("  Captain tokens:")
	for _, captain := range seeded.captains {
		fmt.Printf("    %-12s %s\n", captain.Name, captain.AccessToken)
	}
	fmt.Println()
	fmt.Println("  Start the draft with:")
	fmt.Printf("    curl -X POST %s/api/v1/leagues/%s/start -H 'Authorization: Bearer <manager JWT>'\n", apiURL, seeded.league.ID)
	fmt.Println()
}

func watchCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	leagueID := fs.String("league", "", "League ID (required)")
	token := fs.String("token", "", "Spectator or captain token (required)")
	fs.Parse(args)

	if *leagueID == "" || *token == "" {
		fmt.Println("Error: --league and --token are required")
		fmt.Println("\nUsage: simulator watch --league=<id> --token=<token>")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	for {
		snapshot, err := client.GetSnapshot(*leagueID, *token)
		if err != nil {
			fmt.Printf("Snapshot failed: %v\n", err)
			os.Exit(1)
		}

		acting := "-"
		if snapshot.CurrentCaptainID != nil {
			for _, captain := range snapshot.Captains {
				if captain.ID == *snapshot.CurrentCaptainID {
					acting = captain.Name
				}
			}
		}
		fmt.Printf("status=%s pick=%d/%d on_clock=%s available=%d\n",
			snapshot.League.Status, snapshot.League.CurrentPickIndex, snapshot.TotalPicks,
			acting, len(snapshot.AvailablePlayerIDs))

		if snapshot.League.Status == "completed" {
			return
		}
		time.Sleep(time.Second)
	}
}
