// /internal/progress/migrate.go
package progress

import (
	"nasty-client/internal/roles"
	"nasty-client/internal/storage"
)

// Migrate rewrites a record that still references retired role keys into the
// current roster. Returns true if anything changed; callers persist only
// then, so running it on an already-current record is a no-op.
//
// A learner who had finished the entire legacy roster is credited with the
// entire current one. Otherwise legacy keys are remapped one by one
// (deduplicating, order preserved), keys with no current equivalent are
// dropped, and legacy best scores fold into the mapped key via max.
func Migrate(record *storage.UserProgress) bool {
	migrated := false

	if len(record.CompletedRoles) > 0 {
		hadAllLegacy := true
		for _, legacy := range roles.LegacyRoleOrder {
			if !contains(record.CompletedRoles, legacy) {
				hadAllLegacy = false
				break
			}
		}

		if hadAllLegacy {
			if !equal(record.CompletedRoles, roles.RoleOrder) {
				record.CompletedRoles = append([]string{}, roles.RoleOrder...)
				migrated = true
			}
		} else {
			var remapped []string
			for _, key := range record.CompletedRoles {
				if newKey, ok := roles.LegacyKeyMap[key]; ok {
					if !contains(remapped, newKey) {
						remapped = append(remapped, newKey)
					}
					migrated = true
				} else if _, ok := roles.Get(key); ok {
					if !contains(remapped, key) {
						remapped = append(remapped, key)
					}
				} else {
					// retired key with no replacement
					migrated = true
				}
			}
			if remapped == nil {
				remapped = []string{}
			}
			record.CompletedRoles = remapped
		}
	}

	if len(record.BestScores) > 0 {
		remapped := map[string]float64{}
		for key, score := range record.BestScores {
			target := ""
			if newKey, ok := roles.LegacyKeyMap[key]; ok {
				target = newKey
				migrated = true
			} else if _, ok := roles.Get(key); ok {
				target = key
			} else {
				migrated = true
				continue
			}
			if best, ok := remapped[target]; !ok || score > best {
				remapped[target] = score
			}
		}
		record.BestScores = remapped
	}

	if migrated {
		record.TotalScore = sumScores(record.BestScores)

		if len(record.CompletedRoles) >= len(roles.RoleOrder) {
			record.CurrentLevelIndex = len(roles.RoleOrder)
		} else {
			record.CurrentLevelIndex = len(record.CompletedRoles)
		}
	}

	return migrated
}

func contains(list []string, key string) bool {
	for _, v := range list {
		if v == key {
			return true
		}
	}
	return false
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
