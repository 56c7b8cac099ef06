package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/repository/postgres"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rfox/draftroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     service.RegisterInput
		setup     func()
		wantErr   error
		checkUser bool
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				DisplayName: "newuser",
				Password:    "password123",
			},
			checkUser: true,
		},
		{
			name: "duplicate display name",
			input: service.RegisterInput{
				DisplayName: "existinguser",
				Password:    "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithDisplayName("existinguser").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrDisplayNameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.checkUser {
				assert.NotNil(t, result.User)
				assert.Equal(t, tt.input.DisplayName, result.User.DisplayName)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithDisplayName("loginuser").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name: "successful login",
			input: service.LoginInput{
				DisplayName: user.DisplayName,
				Password:    rawPassword,
			},
		},
		{
			name: "wrong password",
			input: service.LoginInput{
				DisplayName: user.DisplayName,
				Password:    "wrongpassword",
			},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name: "non-existent user",
			input: service.LoginInput{
				DisplayName: "nonexistent",
				Password:    "anypassword",
			},
			wantErr: service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, result.User)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	result, err := authService.Register(ctx, service.RegisterInput{
		DisplayName: "tokenuser",
		Password:    "password123",
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{
			name:    "valid token",
			token:   result.AccessToken,
			wantErr: false,
		},
		{
			name:    "invalid token",
			token:   "invalid.token.here",
			wantErr: true,
		},
		{
			name:    "malformed token",
			token:   "notavalidjwt",
			wantErr: true,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := authService.ValidateToken(tt.token)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, result.User.ID.String(), (*claims)["sub"])
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithDisplayName("getuserbyid").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      uuid.UUID
		wantErr bool
	}{
		{
			name:    "existing user",
			id:      user.ID,
			wantErr: false,
		},
		{
			name:    "non-existent user",
			id:      uuid.New(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authService.GetUserByID(ctx, tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, user.DisplayName, got.DisplayName)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	result, err := authService.Register(ctx, service.RegisterInput{
		DisplayName: "logoutuser",
		Password:    "password123",
	})
	require.NoError(t, err)

	err = authService.Logout(ctx, result.User.ID)
	require.NoError(t, err)

	// No sessions left to delete; still fine.
	err = authService.Logout(ctx, result.User.ID)
	require.NoError(t, err)
}

func TestAuthService_ResolveActor(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, repos.Session, repos.Captain, cfg)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	league := testutil.NewLeagueBuilder().WithOwner(owner).Build(t, testDB.DB)
	captain := testutil.NewCaptainBuilder(league).Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name        string
		creds       service.Credentials
		wantType    domain.ActorType
		wantCaptain *uuid.UUID
		wantErr     bool
	}{
		{
			name:     "league owner is the manager",
			creds:    service.Credentials{UserID: &owner.ID},
			wantType: domain.ActorManager,
		},
		{
			name:        "captain access token is that captain",
			creds:       service.Credentials{Token: captain.AccessToken},
			wantType:    domain.ActorCaptain,
			wantCaptain: &captain.ID,
		},
		{
			name:     "spectator token is a spectator",
			creds:    service.Credentials{Token: league.SpectatorToken},
			wantType: domain.ActorSpectator,
		},
		{
			name:     "owner JWT wins over a token",
			creds:    service.Credentials{UserID: &owner.ID, Token: captain.AccessToken},
			wantType: domain.ActorManager,
		},
		{
			name:    "unknown token is rejected",
			creds:   service.Credentials{Token: "tok_nobody"},
			wantErr: true,
		},
		{
			name:    "non-owner JWT without a token is rejected",
			creds:   service.Credentials{UserID: &stranger.ID},
			wantErr: true,
		},
		{
			name:    "empty credentials are rejected",
			creds:   service.Credentials{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := authService.ResolveActor(ctx, league, tt.creds, "203.0.113.9")

			if tt.wantErr {
				assert.Equal(t, domain.CodeTokenMismatch, domain.CodeOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, actor.Type)
			assert.Equal(t, "203.0.113.9", actor.IP)
			if tt.wantCaptain != nil {
				require.NotNil(t, actor.CaptainID)
				assert.Equal(t, *tt.wantCaptain, *actor.CaptainID)
			}
		})
	}
}
