package playback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"
)

// DefaultSpotifyAPI is the Spotify Web API base URL.
const DefaultSpotifyAPI = "https://api.spotify.com/v1/"

// DefaultVolumeStep is the volume change per gesture, in percent.
const DefaultVolumeStep = 10

// spotifyScopes are the permissions needed to read and control playback.
var spotifyScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

var (
	// ErrNotAuthenticated is returned before the OAuth flow has completed.
	ErrNotAuthenticated = errors.New("spotify: not authenticated")
	// ErrStateMismatch is returned when an OAuth callback carries an unknown state.
	ErrStateMismatch = errors.New("spotify: oauth state mismatch")
)

// TokenStore persists OAuth tokens between runs.
type TokenStore interface {
	LoadToken() (*oauth2.Token, error)
	SaveToken(tok *oauth2.Token) error
}

// SpotifyConfig configures the Spotify controller.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// BaseURL overrides the Web API location, mainly for tests.
	BaseURL string
	// AuthURL and TokenURL override the OAuth endpoint, mainly for tests.
	AuthURL  string
	TokenURL string

	VolumeStep int
	Timeout    time.Duration
}

// Spotify controls playback through the Spotify Web API.
type Spotify struct {
	oauth   *oauth2.Config
	baseURL string
	step    int
	http    *http.Client
	tokens  TokenStore

	mu    sync.RWMutex
	api   *spotify.Client
	state string
}

// NewSpotify creates a Spotify controller. A token found in tokens is used
// right away; otherwise the controller stays unauthenticated until
// HandleCallback succeeds.
func NewSpotify(cfg SpotifyConfig, tokens TokenStore) (*Spotify, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:8888/callback"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSpotifyAPI
	}
	if cfg.VolumeStep <= 0 {
		cfg.VolumeStep = DefaultVolumeStep
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	endpoint := spotifyauth.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	s := &Spotify{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       spotifyScopes,
			Endpoint:     endpoint,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/",
		step:    cfg.VolumeStep,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		state:   uuid.NewString(),
	}

	if tokens != nil {
		tok, err := tokens.LoadToken()
		if err == nil && tok != nil {
			s.useToken(tok)
		}
	}

	return s, nil
}

// Authenticated reports whether a token is available.
func (s *Spotify) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api != nil
}

// AuthURL returns the consent URL the user opens to grant access.
func (s *Spotify) AuthURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oauth.AuthCodeURL(s.state, oauth2.AccessTypeOffline)
}

// HandleCallback exchanges an authorization code for a token and stores it.
func (s *Spotify) HandleCallback(ctx context.Context, state, code string) error {
	s.mu.RLock()
	expected := s.state
	s.mu.RUnlock()

	if state != expected {
		return ErrStateMismatch
	}
	if code == "" {
		return errors.New("spotify: missing authorization code")
	}

	tok, err := s.oauth.Exchange(s.withHTTP(ctx), code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	if s.tokens != nil {
		if err := s.tokens.SaveToken(tok); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	s.useToken(tok)

	s.mu.Lock()
	s.state = uuid.NewString()
	s.mu.Unlock()

	return nil
}

func (s *Spotify) withHTTP(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.http)
}

func (s *Spotify) useToken(tok *oauth2.Token) {
	ctx := s.withHTTP(context.Background())
	src := oauth2.ReuseTokenSource(tok, &savingTokenSource{
		base:   s.oauth.TokenSource(ctx, tok),
		store:  s.tokens,
		access: tok.AccessToken,
	})

	client := oauth2.NewClient(ctx, src)
	client.Timeout = s.http.Timeout

	api := spotify.New(client, spotify.WithBaseURL(s.baseURL))

	s.mu.Lock()
	s.api = api
	s.mu.Unlock()
}

// savingTokenSource persists tokens whenever the access token changes.
type savingTokenSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	mu     sync.Mutex
	access string
}

func (t *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := t.base.Token()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store != nil && tok.AccessToken != t.access {
		if err := t.store.SaveToken(tok); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
		t.access = tok.AccessToken
	}

	return tok, nil
}

// Next skips to the next track.
func (s *Spotify) Next(ctx context.Context) error {
	api, err := s.client()
	if err != nil {
		return err
	}
	return apiError("next", api.Next(ctx))
}

// Previous goes back to the previous track.
func (s *Spotify) Previous(ctx context.Context) error {
	api, err := s.client()
	if err != nil {
		return err
	}
	return apiError("previous", api.Previous(ctx))
}

// VolumeUp raises the device volume by one step.
func (s *Spotify) VolumeUp(ctx context.Context) error {
	return s.stepVolume(ctx, s.step)
}

// VolumeDown lowers the device volume by one step.
func (s *Spotify) VolumeDown(ctx context.Context) error {
	return s.stepVolume(ctx, -s.step)
}

// State returns the current track and device state.
func (s *Spotify) State(ctx context.Context) (State, error) {
	p, err := s.player(ctx)
	if err != nil {
		return State{}, err
	}
	if p.Item == nil {
		return State{}, ErrNoActiveDevice
	}

	state := State{
		Available: true,
		TrackName: p.Item.Name,
		Album:     p.Item.Album.Name,
		Duration:  time.Duration(p.Item.Duration) * time.Millisecond,
		Progress:  time.Duration(p.Progress) * time.Millisecond,
		IsPlaying: p.Playing,
		Volume:    int(p.Device.Volume),
		Device:    p.Device.Name,
	}
	if len(p.Item.Artists) > 0 {
		state.Artist = p.Item.Artists[0].Name
	}

	return state, nil
}

func (s *Spotify) client() (*spotify.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.api == nil {
		return nil, ErrNotAuthenticated
	}
	return s.api, nil
}

// player fetches the playback state. An empty 204 response leaves Item nil.
func (s *Spotify) player(ctx context.Context) (*spotify.PlayerState, error) {
	api, err := s.client()
	if err != nil {
		return nil, err
	}
	p, err := api.PlayerState(ctx)
	if err != nil {
		return nil, apiError("player state", err)
	}
	return p, nil
}

func (s *Spotify) stepVolume(ctx context.Context, delta int) error {
	p, err := s.player(ctx)
	if err != nil {
		return err
	}
	if p.Item == nil && p.Device.Name == "" {
		return ErrNoActiveDevice
	}

	api, err := s.client()
	if err != nil {
		return err
	}
	return apiError("volume", api.Volume(ctx, stepVolume(int(p.Device.Volume), delta)))
}

// apiError wraps err with the operation name. A 404 from the player API
// means no device is active and is reported as ErrNoActiveDevice.
func apiError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("spotify %s: %w", op, ErrNoActiveDevice)
	}
	return fmt.Errorf("spotify %s: %w", op, err)
}
