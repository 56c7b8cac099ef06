package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// LeagueBuilder creates test leagues with a builder pattern
type LeagueBuilder struct {
	owner            *domain.User
	name             string
	algorithm        domain.DraftAlgorithm
	timeLimitSeconds int
	status           domain.LeagueStatus
	scheduledStartAt *time.Time
}

// NewLeagueBuilder creates a new LeagueBuilder with default values
func NewLeagueBuilder() *LeagueBuilder {
	return &LeagueBuilder{
		name:             fmt.Sprintf("Test League %s", uuid.New().String()[:8]),
		algorithm:        domain.DraftAlgorithmSnake,
		timeLimitSeconds: 30,
		status:           domain.LeagueStatusNotStarted,
	}
}

// WithOwner sets the league owner
func (b *LeagueBuilder) WithOwner(user *domain.User) *LeagueBuilder {
	b.owner = user
	return b
}

// WithAlgorithm sets the draft order algorithm
func (b *LeagueBuilder) WithAlgorithm(algorithm domain.DraftAlgorithm) *LeagueBuilder {
	b.algorithm = algorithm
	return b
}

// WithScheduledStart sets the scheduled start time
func (b *LeagueBuilder) WithScheduledStart(at time.Time) *LeagueBuilder {
	b.scheduledStartAt = &at
	return b
}

// Build creates the league in the database
func (b *LeagueBuilder) Build(t *testing.T, db *gorm.DB) *domain.League {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	league := &domain.League{
		ID:               uuid.New(),
		Name:             b.name,
		CreatedBy:        b.owner.ID,
		DraftAlgorithm:   b.algorithm,
		TimeLimitSeconds: b.timeLimitSeconds,
		Status:           b.status,
		ScheduledStartAt: b.scheduledStartAt,
		SpectatorToken:   testToken(),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := db.Create(league).Error; err != nil {
		t.Fatalf("failed to create league: %v", err)
	}

	return league
}

// CaptainBuilder creates test captains
type CaptainBuilder struct {
	league   *domain.League
	name     string
	position int
	playerID *uuid.UUID
	autoPick bool
}

// NewCaptainBuilder creates a new CaptainBuilder with default values
func NewCaptainBuilder(league *domain.League) *CaptainBuilder {
	return &CaptainBuilder{
		league: league,
		name:   fmt.Sprintf("Captain %s", uuid.New().String()[:8]),
	}
}

// WithName sets the captain name
func (b *CaptainBuilder) WithName(name string) *CaptainBuilder {
	b.name = name
	return b
}

// WithPosition sets the draft position; 0 appends after the current seats
func (b *CaptainBuilder) WithPosition(position int) *CaptainBuilder {
	b.position = position
	return b
}

// WithLinkedPlayer links the captain to a pool player
func (b *CaptainBuilder) WithLinkedPlayer(player *domain.Player) *CaptainBuilder {
	b.playerID = &player.ID
	return b
}

// WithAutoPick sets the autodraft toggle
func (b *CaptainBuilder) WithAutoPick(enabled bool) *CaptainBuilder {
	b.autoPick = enabled
	return b
}

// Build creates the captain in the database
func (b *CaptainBuilder) Build(t *testing.T, db *gorm.DB) *domain.Captain {
	t.Helper()

	position := b.position
	if position == 0 {
		var count int64
		if err := db.Model(&domain.Captain{}).Where("league_id = ?", b.league.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count captains: %v", err)
		}
		position = int(count) + 1
	}

	captain := &domain.Captain{
		ID:              uuid.New(),
		LeagueID:        b.league.ID,
		Name:            b.name,
		DraftPosition:   position,
		PlayerID:        b.playerID,
		AutoPickEnabled: b.autoPick,
		AccessToken:     testToken(),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := db.Create(captain).Error; err != nil {
		t.Fatalf("failed to create captain: %v", err)
	}

	return captain
}

// PlayerBuilder creates test pool players
type PlayerBuilder struct {
	league *domain.League
	name   string
}

// NewPlayerBuilder creates a new PlayerBuilder with default values
func NewPlayerBuilder(league *domain.League) *PlayerBuilder {
	return &PlayerBuilder{
		league: league,
		name:   fmt.Sprintf("Player %s", uuid.New().String()[:8]),
	}
}

// WithName sets the player name
func (b *PlayerBuilder) WithName(name string) *PlayerBuilder {
	b.name = name
	return b
}

// Build creates the player in the database
func (b *PlayerBuilder) Build(t *testing.T, db *gorm.DB) *domain.Player {
	t.Helper()

	player := &domain.Player{
		ID:        uuid.New(),
		LeagueID:  b.league.ID,
		Name:      b.name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}

	return player
}

// SeedDraftLeague creates a ready-to-start league with the given numbers of
// captains (positions 1..N) and available players.
func SeedDraftLeague(t *testing.T, db *gorm.DB, captains, players int) (*domain.League, []*domain.Captain, []*domain.Player) {
	t.Helper()

	league := NewLeagueBuilder().Build(t, db)

	seats := make([]*domain.Captain, captains)
	for i := 0; i < captains; i++ {
		seats[i] = NewCaptainBuilder(league).
			WithName(fmt.Sprintf("Captain %d", i+1)).
			WithPosition(i + 1).
			Build(t, db)
	}

	pool := make([]*domain.Player, players)
	for i := 0; i < players; i++ {
		pool[i] = NewPlayerBuilder(league).
			WithName(fmt.Sprintf("Player %d", i+1)).
			Build(t, db)
	}

	return league, seats, pool
}

func testToken() string {
	return fmt.Sprintf("tok_%s", uuid.New().String())
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// CreateDraftTokenRequest creates an HTTP request carrying a league token
// (captain access token or spectator token) instead of a JWT.
func CreateDraftTokenRequest(t *testing.T, method, url string, body interface{}, draftToken string) *http.Request {
	t.Helper()

	req := CreateAuthenticatedRequest(t, method, url, body, "")
	if draftToken != "" {
		req.Header.Set("X-Draft-Token", draftToken)
	}
	return req
}
