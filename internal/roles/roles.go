// /internal/roles/roles.go
package roles

import "fmt"

// Role is one simulated client. Loaded once, never mutated.
type Role struct {
	Key              string
	Name             string
	LevelDescription string
	MainObjection    string
	Multiplier       float64
}

// RoleOrder is the fixed progression: easiest client first, boss level last.
var RoleOrder = []string{"dmitry", "irina", "max", "oleg", "victoria"}

// LegacyRoleOrder is the retired roster. Records created before the rework
// may still reference these keys, see progress migration.
var LegacyRoleOrder = []string{"svetlana", "marina", "irina", "oleg", "victoria"}

// LegacyKeyMap maps retired keys to their current replacements. Retired keys
// without an entry have no equivalent and are dropped on migration.
var LegacyKeyMap = map[string]string{
	"svetlana": "dmitry",
	"marina":   "irina",
}

var catalog = map[string]Role{
	"dmitry": {
		Key:              "dmitry",
		Name:             "Дмитрий",
		LevelDescription: "Уровень 1 — Скептик",
		MainObjection:    "Считает, что массаж — пустая трата денег, и не стесняется об этом говорить.",
		Multiplier:       1.0,
	},
	"irina": {
		Key:              "irina",
		Name:             "Ирина",
		LevelDescription: "Уровень 2 — Вечно занятая",
		MainObjection:    "У неё никогда нет времени: работа, дети, снова работа. Окно в расписании — миф.",
		Multiplier:       1.2,
	},
	"max": {
		Key:              "max",
		Name:             "Макс",
		LevelDescription: "Уровень 3 — Торгаш",
		MainObjection:    "Принципиально не платит полную цену. Требует скидку, бонус и подарок сверху.",
		Multiplier:       1.5,
	},
	"oleg": {
		Key:              "oleg",
		Name:             "Олег",
		LevelDescription: "Уровень 4 — Лояльный чужому мастеру",
		MainObjection:    "Десять лет ходит к «своему проверенному мастеру» и не видит причин что-то менять.",
		Multiplier:       1.8,
	},
	"victoria": {
		Key:              "victoria",
		Name:             "Виктория",
		LevelDescription: "Уровень 5 — Босс",
		MainObjection:    "Дорого, некогда, не доверяет, и вообще её уже трижды обманывали в салонах.",
		Multiplier:       2.0,
	},
}

// Get returns the role for key, false if the key is unknown.
func Get(key string) (Role, bool) {
	r, ok := catalog[key]
	return r, ok
}

// All returns roles in progression order.
func All() []Role {
	out := make([]Role, 0, len(RoleOrder))
	for _, key := range RoleOrder {
		out = append(out, catalog[key])
	}
	return out
}

// Validate checks catalog consistency. Called from init so a broken catalog
// kills the process at startup, not mid-dialog.
func Validate() error {
	if len(RoleOrder) == 0 {
		return fmt.Errorf("roles: empty RoleOrder")
	}
	seen := map[string]bool{}
	for _, key := range RoleOrder {
		if seen[key] {
			return fmt.Errorf("roles: duplicate key %q in RoleOrder", key)
		}
		seen[key] = true
		r, ok := catalog[key]
		if !ok {
			return fmt.Errorf("roles: %q listed in RoleOrder but missing from catalog", key)
		}
		if r.Key != key {
			return fmt.Errorf("roles: catalog key %q does not match role key %q", key, r.Key)
		}
		if r.Name == "" || r.LevelDescription == "" || r.MainObjection == "" {
			return fmt.Errorf("roles: %q has empty fields", key)
		}
		if r.Multiplier <= 0 {
			return fmt.Errorf("roles: %q has non-positive multiplier %v", key, r.Multiplier)
		}
	}
	for _, newKey := range LegacyKeyMap {
		if _, ok := catalog[newKey]; !ok {
			return fmt.Errorf("roles: legacy map points to unknown key %q", newKey)
		}
	}
	return nil
}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
}
