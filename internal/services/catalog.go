package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

// CatalogService is the admin surface over the reward catalog. The
// coordinator treats the catalog as read-mostly input; writes come only
// through here.
type CatalogService interface {
	CreateReward(ctx context.Context, def *types.RewardDefinition) error
	UpdateReward(ctx context.Context, rewardID uuid.UUID, patch RewardPatch) error
	DeactivateReward(ctx context.Context, rewardID uuid.UUID) error
	DeleteReward(ctx context.Context, rewardID uuid.UUID) error
	GetReward(ctx context.Context, rewardID uuid.UUID) (*types.RewardDefinition, error)
	ListRewards(ctx context.Context, kind types.RewardKind, activeOnly bool) ([]*types.RewardDefinition, error)
	SeedFromFile(ctx context.Context, path string) (int, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	rewardRepo repos.RewardDefinitionRepo
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, rewardRepo repos.RewardDefinitionRepo) CatalogService {
	return &catalogService{
		db:         db,
		log:        baseLog.With("service", "CatalogService"),
		rewardRepo: rewardRepo,
	}
}

func (cs *catalogService) CreateReward(ctx context.Context, def *types.RewardDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	if _, err := cs.rewardRepo.Create(ctx, nil, []*types.RewardDefinition{def}); err != nil {
		return fmt.Errorf("create reward definition: %w", err)
	}
	return nil
}

// RewardPatch is the set of columns an admin may change after creation. Nil
// means "leave as is". ID and Kind are immutable: a badge cannot become an
// achievement with a live payout schedule attached to its rarity.
type RewardPatch struct {
	Name              *string
	Description       *string
	Rarity            *string
	CriteriaKind      *string
	CriteriaThreshold *int64
	RewardCoins       *int
	RewardExperience  *int
	Limited           *bool
	AvailableFrom     *time.Time
	AvailableUntil    *time.Time
	Active            *bool
}

// UpdateReward applies the patch to the stored definition and persists it
// only if the merged result passes the same validation CreateReward runs.
// A patch that would leave the catalog with an out-of-enum rarity or kind is
// rejected, never silently stored.
func (cs *catalogService) UpdateReward(ctx context.Context, rewardID uuid.UUID, patch RewardPatch) error {
	def, err := cs.rewardRepo.GetByID(ctx, nil, rewardID)
	if err != nil {
		return fmt.Errorf("load reward definition: %w", err)
	}
	if def == nil {
		return apierr.RewardNotFound(rewardID.String())
	}

	merged := *def
	fields := map[string]interface{}{}
	if patch.Name != nil {
		merged.Name = *patch.Name
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
		fields["description"] = *patch.Description
	}
	if patch.Rarity != nil {
		merged.Rarity = types.Rarity(*patch.Rarity)
		fields["rarity"] = *patch.Rarity
	}
	if patch.CriteriaKind != nil {
		merged.CriteriaKind = types.CriteriaKind(*patch.CriteriaKind)
		fields["criteria_kind"] = *patch.CriteriaKind
	}
	if patch.CriteriaThreshold != nil {
		merged.CriteriaThreshold = *patch.CriteriaThreshold
		fields["criteria_threshold"] = *patch.CriteriaThreshold
	}
	if patch.RewardCoins != nil {
		merged.RewardCoins = *patch.RewardCoins
		fields["reward_coins"] = *patch.RewardCoins
	}
	if patch.RewardExperience != nil {
		merged.RewardExperience = *patch.RewardExperience
		fields["reward_experience"] = *patch.RewardExperience
	}
	if patch.Limited != nil {
		merged.Limited = *patch.Limited
		fields["limited"] = *patch.Limited
	}
	if patch.AvailableFrom != nil {
		merged.AvailableFrom = patch.AvailableFrom
		fields["available_from"] = *patch.AvailableFrom
	}
	if patch.AvailableUntil != nil {
		merged.AvailableUntil = patch.AvailableUntil
		fields["available_until"] = *patch.AvailableUntil
	}
	if patch.Active != nil {
		merged.Active = *patch.Active
		fields["active"] = *patch.Active
	}
	if len(fields) == 0 {
		return nil
	}
	if err := validateDefinition(&merged); err != nil {
		return err
	}
	return cs.rewardRepo.UpdateFields(ctx, nil, rewardID, fields)
}

func (cs *catalogService) DeactivateReward(ctx context.Context, rewardID uuid.UUID) error {
	inactive := false
	return cs.UpdateReward(ctx, rewardID, RewardPatch{Active: &inactive})
}

func (cs *catalogService) DeleteReward(ctx context.Context, rewardID uuid.UUID) error {
	def, err := cs.rewardRepo.GetByID(ctx, nil, rewardID)
	if err != nil {
		return fmt.Errorf("load reward definition: %w", err)
	}
	if def == nil {
		return apierr.RewardNotFound(rewardID.String())
	}
	return cs.rewardRepo.Delete(ctx, nil, rewardID)
}

func (cs *catalogService) GetReward(ctx context.Context, rewardID uuid.UUID) (*types.RewardDefinition, error) {
	def, err := cs.rewardRepo.GetByID(ctx, nil, rewardID)
	if err != nil {
		return nil, fmt.Errorf("load reward definition: %w", err)
	}
	if def == nil {
		return nil, apierr.RewardNotFound(rewardID.String())
	}
	return def, nil
}

func (cs *catalogService) ListRewards(ctx context.Context, kind types.RewardKind, activeOnly bool) ([]*types.RewardDefinition, error) {
	return cs.rewardRepo.List(ctx, nil, kind, activeOnly)
}

type seedEntry struct {
	ID                string `yaml:"id"`
	Kind              string `yaml:"kind"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	Rarity            string `yaml:"rarity"`
	CriteriaKind      string `yaml:"criteria_kind"`
	CriteriaThreshold int64  `yaml:"criteria_threshold"`
	RewardCoins       int    `yaml:"reward_coins"`
	RewardExperience  int    `yaml:"reward_experience"`
	Limited           bool   `yaml:"limited"`
	AvailableFrom     string `yaml:"available_from"`
	AvailableUntil    string `yaml:"available_until"`
	Active            *bool  `yaml:"active"`
}

type seedFile struct {
	Rewards []seedEntry `yaml:"rewards"`
}

// SeedFromFile upserts catalog entries from a YAML file at bootstrap. Seeded
// entries need stable IDs so re-seeding updates instead of duplicating.
func (cs *catalogService) SeedFromFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	count := 0
	for _, entry := range file.Rewards {
		def, err := entry.toDefinition()
		if err != nil {
			return count, fmt.Errorf("seed entry %q: %w", entry.Name, err)
		}
		err = cs.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(def).Error
		if err != nil {
			return count, fmt.Errorf("upsert seed entry %q: %w", entry.Name, err)
		}
		count++
	}
	cs.log.Info("reward catalog seeded", "path", path, "entries", count)
	return count, nil
}

func (e seedEntry) toDefinition() (*types.RewardDefinition, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	def := &types.RewardDefinition{
		ID:                id,
		Kind:              types.RewardKind(e.Kind),
		Name:              e.Name,
		Description:       e.Description,
		Rarity:            types.Rarity(e.Rarity),
		CriteriaKind:      types.CriteriaKind(e.CriteriaKind),
		CriteriaThreshold: e.CriteriaThreshold,
		RewardCoins:       e.RewardCoins,
		RewardExperience:  e.RewardExperience,
		Limited:           e.Limited,
		Active:            true,
	}
	if e.Active != nil {
		def.Active = *e.Active
	}
	if e.AvailableFrom != "" {
		t, err := time.Parse(time.RFC3339, e.AvailableFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid available_from: %w", err)
		}
		def.AvailableFrom = &t
	}
	if e.AvailableUntil != "" {
		t, err := time.Parse(time.RFC3339, e.AvailableUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid available_until: %w", err)
		}
		def.AvailableUntil = &t
	}
	return def, validateDefinition(def)
}

func validateDefinition(def *types.RewardDefinition) error {
	if def == nil {
		return apierr.New(400, apierr.CodeValidation, errors.New("missing definition"))
	}
	if def.Name == "" {
		return apierr.New(400, apierr.CodeValidation, errors.New("name is required"))
	}
	switch def.Kind {
	case types.RewardKindAchievement, types.RewardKindBadge:
	default:
		return apierr.New(400, apierr.CodeValidation, fmt.Errorf("unknown reward kind %q", def.Kind))
	}
	switch def.Rarity {
	case types.RarityCommon, types.RarityRare, types.RarityEpic, types.RarityLegendary, types.RarityUnique:
	default:
		return apierr.New(400, apierr.CodeValidation, fmt.Errorf("unknown rarity %q", def.Rarity))
	}
	return nil
}
