package showroom

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/logger"
	"github.com/dmitrymomot/showroom/pkg/pg"
	"github.com/dmitrymomot/showroom/pkg/validator"
)

var (
	ErrProfileNotFound     = errors.New("showroom profile not found")
	ErrInvalidProfile      = errors.New("invalid showroom profile")
	ErrFailedToLoadProfile = errors.New("failed to load showroom profile")
	ErrFailedToSaveProfile = errors.New("failed to save showroom profile")
)

// Profile is a seller's public showroom page.
type Profile struct {
	UserID       uuid.UUID         `json:"user_id"`
	Name         string            `json:"name"`
	Website      string            `json:"website,omitempty"`
	OpeningHours string            `json:"opening_hours,omitempty"`
	SocialMedia  map[string]string `json:"social_media,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Update carries the fields to change. Nil fields are left as they are; an
// empty string or empty map clears the field.
type Update struct {
	Name         *string           `json:"name"`
	Website      *string           `json:"website"`
	OpeningHours *string           `json:"opening_hours"`
	SocialMedia  map[string]string `json:"social_media"`
}

type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

type Gate interface {
	GetEntitlements(ctx context.Context, userID uuid.UUID) (entitlement.Entitlements, error)
}

type Service struct {
	store  Store
	gate   Gate
	logger *slog.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, gate Gate, opts ...ServiceOption) *Service {
	if store == nil || gate == nil {
		panic("showroom: store and gate are required")
	}
	s := &Service{
		store:  store,
		gate:   gate,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the profile or an empty one for sellers who never saved it.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &Profile{UserID: userID}, nil
	}
	return p, err
}

// Update applies u. Setting website, opening hours or social media needs the
// matching capability; clearing them never does.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, u Update) (*Profile, error) {
	ent, err := s.gate.GetEntitlements(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Website != nil {
		website := strings.TrimSpace(*u.Website)
		if website != "" {
			if err := ent.Require(entitlement.FeatureWebsite); err != nil {
				return nil, err
			}
			if err := validateLinks(validator.ValidURLWithScheme("website", website, linkSchemes)); err != nil {
				return nil, err
			}
		}
		p.Website = website
	}
	if u.OpeningHours != nil {
		hours := strings.TrimSpace(*u.OpeningHours)
		if hours != "" {
			if err := ent.Require(entitlement.FeatureOpeningHours); err != nil {
				return nil, err
			}
		}
		p.OpeningHours = hours
	}
	if u.SocialMedia != nil {
		links := make(map[string]string, len(u.SocialMedia))
		for k, v := range u.SocialMedia {
			k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			links[k] = v
		}
		if len(links) > 0 {
			if err := ent.Require(entitlement.FeatureSocialMedia); err != nil {
				return nil, err
			}
			rules := make([]validator.Rule, 0, len(links))
			for _, k := range slices.Sorted(maps.Keys(links)) {
				rules = append(rules, validator.ValidURLWithScheme("social_media."+k, links[k], linkSchemes))
			}
			if err := validateLinks(rules...); err != nil {
				return nil, err
			}
		}
		p.SocialMedia = links
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "showroom profile updated",
		logger.UserID(userID),
		logger.Tier(ent.Tier),
		logger.Event("showroom.updated"),
	)
	return p, nil
}

var linkSchemes = []string{"http", "https"}

func validateLinks(rules ...validator.Rule) error {
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidProfile, err)
	}
	return nil
}

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]Profile)}
}

func (m *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.rows[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p.SocialMedia = maps.Clone(p.SocialMedia)
	return &p, nil
}

func (m *MemoryStore) Save(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := *p
	row.SocialMedia = maps.Clone(p.SocialMedia)
	m.rows[p.UserID] = row
	return nil
}

const (
	selectProfileSQL = `SELECT user_id, name, website, opening_hours, social_media, updated_at
FROM showrooms WHERE user_id = $1`
	upsertProfileSQL = `INSERT INTO showrooms (user_id, name, website, opening_hours, social_media, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
	name = EXCLUDED.name,
	website = EXCLUDED.website,
	opening_hours = EXCLUDED.opening_hours,
	social_media = EXCLUDED.social_media,
	updated_at = EXCLUDED.updated_at`
)

// PostgresStore keeps profiles in the showrooms table; social media links are JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("showroom: db is required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var (
		p      Profile
		social []byte
	)
	err := s.db.QueryRowContext(ctx, selectProfileSQL, userID).Scan(
		&p.UserID, &p.Name, &p.Website, &p.OpeningHours, &social, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, errors.Join(ErrFailedToLoadProfile, err)
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &p.SocialMedia); err != nil {
			return nil, errors.Join(ErrFailedToLoadProfile, err)
		}
	}
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Profile) error {
	links := p.SocialMedia
	if links == nil {
		links = map[string]string{}
	}
	social, err := json.Marshal(links)
	if err != nil {
		return errors.Join(ErrFailedToSaveProfile, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertProfileSQL,
		p.UserID, p.Name, p.Website, p.OpeningHours, social, p.UpdatedAt,
	); err != nil {
		return errors.Join(ErrFailedToSaveProfile, err)
	}
	return nil
}
