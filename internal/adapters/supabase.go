package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/models"
)

// SupabaseConfig holds the project endpoint and keys
type SupabaseConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
	Schema     SupabaseSchema
}

// SupabaseSchema names the tables of the deployed project.
// Column names follow the deployed vocabulary and are aliased onto the models in each select.
type SupabaseSchema struct {
	ProfilesTable       string
	EstablishmentsTable string
	SectorsTable        string
	TablesTable         string
}

// DefaultSupabaseSchema is the schema the POS front-end was deployed with
func DefaultSupabaseSchema() SupabaseSchema {
	return SupabaseSchema{
		ProfilesTable:       "perfiles",
		EstablishmentsTable: "bares",
		SectorsTable:        "sectores",
		TablesTable:         "mesas",
	}
}

func (s SupabaseSchema) withDefaults() SupabaseSchema {
	def := DefaultSupabaseSchema()
	if s.ProfilesTable == "" {
		s.ProfilesTable = def.ProfilesTable
	}
	if s.EstablishmentsTable == "" {
		s.EstablishmentsTable = def.EstablishmentsTable
	}
	if s.SectorsTable == "" {
		s.SectorsTable = def.SectorsTable
	}
	if s.TablesTable == "" {
		s.TablesTable = def.TablesTable
	}
	return s
}

// tableStates maps the stored estado values onto table states
var tableStates = map[string]models.TableState{
	"libre":     models.TableStateFree,
	"ocupada":   models.TableStateOccupied,
	"reservada": models.TableStateReserved,
	"sucia":     models.TableStateDirty,
}

// mapTableState translates a stored state. Values already in the model vocabulary
// and unrecognized values pass through unchanged.
func mapTableState(raw string) models.TableState {
	if state, ok := tableStates[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return state
	}
	return models.TableState(raw)
}

// SupabaseBackend implements Backend against GoTrue (auth) and PostgREST (rows).
// The profile is read with the signed-in user's access token so row level security applies;
// floor reads have no user context and use the service key.
type SupabaseBackend struct {
	client     *http.Client
	baseURL    string
	anonKey    string
	serviceKey string
	schema     SupabaseSchema
}

// NewSupabaseBackend creates a new Supabase backend
func NewSupabaseBackend(cfg SupabaseConfig) (*SupabaseBackend, error) {
	if cfg.URL == "" || cfg.AnonKey == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase url, anon key and service key are required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &SupabaseBackend{
		client:     &http.Client{Timeout: timeout},
		baseURL:    cfg.URL,
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		schema:     cfg.Schema.withDefaults(),
	}, nil
}

func (s *SupabaseBackend) Type() string {
	return "supabase"
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	} `json:"user"`
}

// Authenticate exchanges email and password with the password grant
func (s *SupabaseBackend) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// GoTrue answers 400 for both unknown users and wrong passwords
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return Identity{}, ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return Identity{}, fmt.Errorf("supabase auth returned status %d: %s", resp.StatusCode, string(msg))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Identity{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if token.User.ID == uuid.Nil {
		return Identity{}, ErrAuthFailed
	}

	return Identity{
		UserID:      token.User.ID,
		Email:       token.User.Email,
		AccessToken: token.AccessToken,
	}, nil
}

// profileRow is the raw shape of the joined profile query
type profileRow struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Role          string            `json:"role"`
	IsActive      *bool             `json:"is_active"`
	Establishment *establishmentRow `json:"establishment"`
}

type establishmentRow struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	IsActive       *bool     `json:"is_active"`
	ExpirationDate string    `json:"expiration_date"`
}

func (r profileRow) toModel() (*models.StaffProfile, error) {
	if r.IsActive == nil {
		return nil, fmt.Errorf("%w: missing is_active", models.ErrMalformedProfile)
	}
	profile := &models.StaffProfile{
		ID:       r.ID,
		Name:     r.Name,
		Role:     r.Role,
		IsActive: *r.IsActive,
	}

	if est := r.Establishment; est != nil {
		if est.IsActive == nil {
			return nil, fmt.Errorf("%w: missing establishment is_active", models.ErrMalformedProfile)
		}
		expires, err := parseDate(est.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedProfile, err)
		}
		profile.EstablishmentID = est.ID
		profile.Establishment = &models.Establishment{
			ID:             est.ID,
			Name:           est.Name,
			IsActive:       *est.IsActive,
			ExpirationDate: expires,
		}
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// parseDate accepts a postgres date or a full timestamp
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration date %q", raw)
	}
	return t, nil
}

// FetchProfile retrieves exactly one profile joined with its establishment
func (s *SupabaseBackend) FetchProfile(ctx context.Context, identity Identity) (*models.StaffProfile, error) {
	params := url.Values{}
	params.Set("select", fmt.Sprintf(
		"id,name:nombre,role:rol,is_active:activo,establishment:%s(id,name:nombre,is_active:activo,expiration_date:fecha_vencimiento)",
		s.schema.EstablishmentsTable))
	params.Set("id", "eq."+identity.UserID.String())

	// Without a user session fall back to the service key
	bearer := identity.AccessToken
	if bearer == "" {
		bearer = s.serviceKey
	}

	var rows []json.RawMessage
	if err := s.query(ctx, s.schema.ProfilesTable, params, bearer, &rows); err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, ErrProfileNotFound
	}

	var row profileRow
	if err := json.Unmarshal(rows[0], &row); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedProfile, err)
	}
	return row.toModel()
}

// FetchSectors retrieves the sectors of an establishment
func (s *SupabaseBackend) FetchSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error) {
	params := url.Values{}
	params.Set("select", "id,name:nombre,establishment_id:bar_id")
	params.Set("bar_id", "eq."+establishmentID.String())
	params.Set("order", "nombre.asc")

	var sectors []models.Sector
	if err := s.query(ctx, s.schema.SectorsTable, params, s.serviceKey, &sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}

type tableRow struct {
	ID           uuid.UUID `json:"id"`
	DisplayLabel string    `json:"display_label"`
	State        string    `json:"state"`
	SectorID     uuid.UUID `json:"sector_id"`
}

// FetchTables retrieves the tables whose sector belongs to the establishment
func (s *SupabaseBackend) FetchTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error) {
	sectors := s.schema.SectorsTable
	params := url.Values{}
	params.Set("select", fmt.Sprintf("id,display_label:nombre_referencia,state:estado,sector_id,%s!inner(bar_id)", sectors))
	params.Set(sectors+".bar_id", "eq."+establishmentID.String())
	params.Set("order", "nombre_referencia.asc")

	var rows []tableRow
	if err := s.query(ctx, s.schema.TablesTable, params, s.serviceKey, &rows); err != nil {
		return nil, err
	}

	tables := make([]models.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, models.Table{
			ID:           row.ID,
			DisplayLabel: row.DisplayLabel,
			State:        mapTableState(row.State),
			SectorID:     row.SectorID,
		})
	}
	return tables, nil
}

func (s *SupabaseBackend) query(ctx context.Context, table string, params url.Values, bearer string, out any) error {
	queryURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, table, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase returned status %d for %s: %s", resp.StatusCode, table, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return nil
}

// Ping checks the auth service health endpoint
func (s *SupabaseBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("supabase health returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseBackend) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
