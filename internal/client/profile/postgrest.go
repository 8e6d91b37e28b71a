package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

const profileTable = "profiles"

// TokenSource supplies the bearer token for row-level-security authorized
// requests. Usually a closure over the session provider.
type TokenSource func(ctx context.Context) (string, error)

// PostgRESTRepository implements Repository against the hosted REST API
// fronting the profile table.
type PostgRESTRepository struct {
	baseURL string
	anonKey string
	http    *http.Client
	token   TokenSource
	log     logging.Logger
}

// Option configures the repository during construction.
type Option func(*PostgRESTRepository)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(r *PostgRESTRepository) { r.http = h }
}

// NewPostgRESTRepository constructs a repository for the given endpoint.
func NewPostgRESTRepository(baseURL, anonKey string, token TokenSource, log logging.Logger, opts ...Option) *PostgRESTRepository {
	r := &PostgRESTRepository{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
		log:     log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// profileRow is the external record shape. The json tags are the explicit
// rename table between the hosted schema and the internal model; pointer
// fields with omitempty keep absent patch fields out of the request body so
// they are never unset server-side.
type profileRow struct {
	ID                 string    `json:"id,omitempty"`
	FullName           *string   `json:"full_name,omitempty"`
	Email              *string   `json:"email,omitempty"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
	Interests          *[]string `json:"interests,omitempty"`
	PreferredLevel     *string   `json:"preferred_level,omitempty"`
	Theme              *string   `json:"theme,omitempty"`
	OnboardingComplete *bool     `json:"onboarding_complete,omitempty"`
	WeeklyGoalMinutes  *int      `json:"weekly_goal_minutes,omitempty"`
}

func (row *profileRow) toModel() *models.UserProfile {
	p := &models.UserProfile{
		ID:    row.ID,
		Theme: models.ThemeSystem,
	}
	if row.FullName != nil {
		p.Name = *row.FullName
	}
	if row.Email != nil {
		p.Email = *row.Email
	}
	if row.AvatarURL != nil {
		p.AvatarURL = *row.AvatarURL
	}
	if row.Interests != nil {
		p.Interests = *row.Interests
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if row.PreferredLevel != nil {
		p.PreferredLevel = models.Level(*row.PreferredLevel)
	}
	if row.Theme != nil && *row.Theme != "" {
		p.Theme = models.ThemePreference(*row.Theme)
	}
	if row.OnboardingComplete != nil {
		p.OnboardingComplete = *row.OnboardingComplete
	}
	if row.WeeklyGoalMinutes != nil {
		p.WeeklyGoalMinutes = *row.WeeklyGoalMinutes
	}
	return p
}

func rowFromPatch(patch models.ProfilePatch) profileRow {
	row := profileRow{
		FullName:           patch.Name,
		AvatarURL:          patch.AvatarURL,
		Interests:          patch.Interests,
		OnboardingComplete: patch.OnboardingComplete,
		WeeklyGoalMinutes:  patch.WeeklyGoalMinutes,
	}
	if patch.PreferredLevel != nil {
		s := string(*patch.PreferredLevel)
		row.PreferredLevel = &s
	}
	if patch.Theme != nil {
		s := string(*patch.Theme)
		row.Theme = &s
	}
	return row
}

// FetchProfile looks up the profile row by id.
func (r *PostgRESTRepository) FetchProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("select", "*")

	raw, err := r.do(ctx, http.MethodGet, query, nil)
	if err != nil {
		r.log.Error(ctx, "failed to fetch profile", "id", id, "error", err)
		return nil, fmt.Errorf("fetch profile %s: %w", id, err)
	}

	var rows []profileRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		r.log.Error(ctx, "failed to decode profile row", "id", id, "error", err)
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toModel(), nil
}

// UpdateProfile performs a partial merge of the supplied fields and returns
// the full resulting row.
func (r *PostgRESTRepository) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error) {
	if patch.ID == "" {
		return nil, common.ErrProfileIDRequired
	}

	body, err := json.Marshal(rowFromPatch(patch))
	if err != nil {
		return nil, fmt.Errorf("marshal profile patch: %w", err)
	}

	query := url.Values{}
	query.Set("id", "eq."+patch.ID)

	raw, err := r.do(ctx, http.MethodPatch, query, body)
	if err != nil {
		r.log.Error(ctx, "failed to update profile", "id", patch.ID, "error", err)
		return nil, fmt.Errorf("update profile %s: %w", patch.ID, err)
	}

	var rows []profileRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		r.log.Error(ctx, "failed to decode updated profile", "id", patch.ID, "error", err)
		return nil, fmt.Errorf("decode updated profile %s: %w", patch.ID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("update profile %s: %w", patch.ID, common.ErrorNotFound)
	}
	return rows[0].toModel(), nil
}

func (r *PostgRESTRepository) do(ctx context.Context, method string, query url.Values, body []byte) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", r.baseURL, profileTable, query.Encode())

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	token, err := r.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("token source: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, profileTable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, profileTable, resp.StatusCode, string(raw))
	}
	return raw, nil
}
