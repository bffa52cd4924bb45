package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

func newCatalogFixture(t *testing.T, defs ...*types.RewardDefinition) (CatalogService, *fakeRewardDefinitionRepo) {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	repo := newFakeRewardDefinitionRepo(defs...)
	return NewCatalogService(nil, log, repo), repo
}

func seededBadge() *types.RewardDefinition {
	return &types.RewardDefinition{
		ID:     uuid.New(),
		Kind:   types.RewardKindBadge,
		Name:   "saver_badge",
		Rarity: types.RarityRare,
		Active: true,
	}
}

func TestCreateRewardRejectsInvalidDefinitions(t *testing.T) {
	svc, repo := newCatalogFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		def  *types.RewardDefinition
	}{
		{"missing_name", &types.RewardDefinition{Kind: types.RewardKindBadge, Rarity: types.RarityCommon}},
		{"unknown_kind", &types.RewardDefinition{Kind: "trophy", Name: "x", Rarity: types.RarityCommon}},
		{"unknown_rarity", &types.RewardDefinition{Kind: types.RewardKindBadge, Name: "x", Rarity: "mythic"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreateReward(ctx, tc.def); !apierr.IsCode(err, apierr.CodeValidation) {
				t.Fatalf("err = %v, want code %s", err, apierr.CodeValidation)
			}
		})
	}
	if len(repo.defs) != 0 {
		t.Fatalf("invalid definitions were persisted: %d", len(repo.defs))
	}
}

// A patch that would leave a badge with an out-of-enum rarity must be
// rejected: an unknown rarity resolves to a zero payout, so a later claim
// would consume the one-shot unlock while paying nothing.
func TestUpdateRewardValidatesMergedDefinition(t *testing.T) {
	def := seededBadge()
	svc, repo := newCatalogFixture(t, def)
	ctx := context.Background()

	mythic := "mythic"
	err := svc.UpdateReward(ctx, def.ID, RewardPatch{Rarity: &mythic})
	if !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("unknown rarity err = %v, want code %s", err, apierr.CodeValidation)
	}
	empty := ""
	if err := svc.UpdateReward(ctx, def.ID, RewardPatch{Name: &empty}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("empty name err = %v, want code %s", err, apierr.CodeValidation)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("rejected patches reached the store: %v", repo.updates)
	}

	// The stored rarity still resolves to its scheduled payout.
	payout := PayoutFor(def)
	if payout.Coins == 0 || payout.Experience == 0 {
		t.Fatalf("badge payout degraded to %+v", payout)
	}
}

func TestUpdateRewardWhitelistsColumns(t *testing.T) {
	def := seededBadge()
	svc, repo := newCatalogFixture(t, def)

	epic := string(types.RarityEpic)
	threshold := int64(500)
	err := svc.UpdateReward(context.Background(), def.ID, RewardPatch{
		Rarity:            &epic,
		CriteriaThreshold: &threshold,
	})
	if err != nil {
		t.Fatalf("UpdateReward: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("updates persisted = %d, want 1", len(repo.updates))
	}
	fields := repo.updates[0]
	if len(fields) != 2 {
		t.Fatalf("fields = %v, want exactly rarity and criteria_threshold", fields)
	}
	if fields["rarity"] != epic || fields["criteria_threshold"] != threshold {
		t.Fatalf("fields = %v", fields)
	}
	for _, immutable := range []string{"id", "kind"} {
		if _, ok := fields[immutable]; ok {
			t.Fatalf("immutable column %q reached the store", immutable)
		}
	}
}

func TestUpdateRewardEmptyPatchIsNoOp(t *testing.T) {
	def := seededBadge()
	svc, repo := newCatalogFixture(t, def)

	if err := svc.UpdateReward(context.Background(), def.ID, RewardPatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("empty patch reached the store: %v", repo.updates)
	}
}

func TestUpdateRewardUnknownID(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	active := false
	err := svc.UpdateReward(context.Background(), uuid.New(), RewardPatch{Active: &active})
	if !apierr.IsCode(err, apierr.CodeRewardNotFound) {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeRewardNotFound)
	}
}

func TestDeactivateReward(t *testing.T) {
	def := seededBadge()
	svc, repo := newCatalogFixture(t, def)

	if err := svc.DeactivateReward(context.Background(), def.ID); err != nil {
		t.Fatalf("DeactivateReward: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("updates persisted = %d, want 1", len(repo.updates))
	}
	if got := repo.updates[0]["active"]; got != false {
		t.Fatalf("active = %v, want false", got)
	}
}
