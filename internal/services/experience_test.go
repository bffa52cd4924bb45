package services

import "testing"

func TestAdvanceLevel(t *testing.T) {
	cases := []struct {
		name          string
		level         int
		experience    int
		amount        int
		wantLevel     int
		wantExp       int
		wantLeveledUp bool
	}{
		{
			name:       "no_level_up",
			level:      1,
			experience: 10,
			amount:     30,
			wantLevel:  1,
			wantExp:    40,
		},
		{
			name:          "single_level_up_with_carry",
			level:         1,
			experience:    90,
			amount:        50,
			wantLevel:     2,
			wantExp:       40,
			wantLeveledUp: true,
		},
		{
			name:          "exact_threshold_rolls_over",
			level:         1,
			experience:    0,
			amount:        100,
			wantLevel:     2,
			wantExp:       0,
			wantLeveledUp: true,
		},
		{
			name:          "multi_level_jump_from_one_grant",
			level:         1,
			experience:    0,
			amount:        350,
			wantLevel:     3,
			wantExp:       50,
			wantLeveledUp: true,
		},
		{
			name:          "large_grant_crosses_many_levels",
			level:         2,
			experience:    150,
			amount:        1000,
			wantLevel:     5,
			wantExp:       250,
			wantLeveledUp: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotLevel, gotExp, gotLeveledUp := advanceLevel(tc.level, tc.experience, tc.amount)
			if gotLevel != tc.wantLevel || gotExp != tc.wantExp || gotLeveledUp != tc.wantLeveledUp {
				t.Fatalf("advanceLevel(%d, %d, %d) = (%d, %d, %v), want (%d, %d, %v)",
					tc.level, tc.experience, tc.amount,
					gotLevel, gotExp, gotLeveledUp,
					tc.wantLevel, tc.wantExp, tc.wantLeveledUp)
			}
			if gotExp >= gotLevel*100 {
				t.Fatalf("invariant violated: experience %d >= level*100 (%d)", gotExp, gotLevel*100)
			}
			if gotLevel < tc.level {
				t.Fatalf("level decreased: %d -> %d", tc.level, gotLevel)
			}
		})
	}
}

func TestAdvanceLevelInvariantOverSequence(t *testing.T) {
	level, exp := 1, 0
	amounts := []int{1, 99, 100, 37, 263, 5, 999, 42}
	for _, amount := range amounts {
		var leveledUp bool
		prevLevel := level
		level, exp, leveledUp = advanceLevel(level, exp, amount)
		if exp >= level*100 {
			t.Fatalf("after +%d: experience %d >= level*100 (%d)", amount, exp, level*100)
		}
		if level < prevLevel {
			t.Fatalf("after +%d: level decreased %d -> %d", amount, prevLevel, level)
		}
		if leveledUp && level == prevLevel {
			t.Fatalf("after +%d: leveledUp reported without level change", amount)
		}
	}
}
