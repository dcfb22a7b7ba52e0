package sizing

import (
	"fmt"
	"strings"
)

// PropertyType is the kind of site a system is sized for
type PropertyType string

const (
	Residential PropertyType = "residential"
	Commercial  PropertyType = "commercial"
	Industrial  PropertyType = "industrial"
	Estate      PropertyType = "estate"
)

// Objective is the user's grid-independence goal
type Objective string

const (
	StandardBackup Objective = "standard-backup"
	ExtendedBackup Objective = "extended-backup"
	NearOffGrid    Objective = "near-off-grid"
	OffGrid        Objective = "off-grid"
)

// Objectives lists every objective in increasing order of autonomy
var Objectives = []Objective{StandardBackup, ExtendedBackup, NearOffGrid, OffGrid}

// objectiveAliases maps the ids the builder frontends send onto canonical objectives
var objectiveAliases = map[string]Objective{
	"standard-backup": StandardBackup,
	"standard":        StandardBackup,
	"backup":          StandardBackup,
	"extended-backup": ExtendedBackup,
	"extended":        ExtendedBackup,
	"hybrid":          ExtendedBackup,
	"near-off-grid":   NearOffGrid,
	"off-grid":        OffGrid,
	"offgrid":         OffGrid,
}

// ParseObjective resolves an objective id. An empty id means standard backup.
func ParseObjective(s string) (Objective, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return StandardBackup, nil
	}
	if o, ok := objectiveAliases[key]; ok {
		return o, nil
	}
	return "", fmt.Errorf("%w: unknown energy objective %q", ErrInvalidGoalProfile, s)
}

// ParsePropertyType resolves a property type id. An empty id means residential.
func ParsePropertyType(s string) (PropertyType, error) {
	switch p := PropertyType(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Residential, nil
	case Residential, Commercial, Industrial, Estate:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown property type %q", ErrInvalidGoalProfile, s)
	}
}

// GoalProfile is the sizing intent selected by the user.
// BackupHours of zero means the objective's default window is used.
type GoalProfile struct {
	PropertyType PropertyType
	Objective    Objective
	BackupHours  float64
}

// Validate checks that the enum values are known and the backup window is sane
func (g GoalProfile) Validate() error {
	switch g.PropertyType {
	case Residential, Commercial, Industrial, Estate:
	default:
		return fmt.Errorf("%w: unknown property type %q", ErrInvalidGoalProfile, g.PropertyType)
	}
	switch g.Objective {
	case StandardBackup, ExtendedBackup, NearOffGrid, OffGrid:
	default:
		return fmt.Errorf("%w: unknown energy objective %q", ErrInvalidGoalProfile, g.Objective)
	}
	if !finite(g.BackupHours) || g.BackupHours < 0 {
		return fmt.Errorf("%w: backup hours must be finite and not negative (got %v)", ErrInvalidGoalProfile, g.BackupHours)
	}
	return nil
}
