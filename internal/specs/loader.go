// Package specs loads project and role specifications from a directory:
// project.yaml for the shared alias table, roles/*.yaml for the individual
// role specs. Files are validated on load; a broken file is reported and
// skipped so one bad role never blocks a hiring project.
package specs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "cvranker/internal/errors"
	"cvranker/internal/types"
)

const (
	projectFile = "project.yaml"
	rolesSubdir = "roles"
)

// LoadResult carries the loaded project plus per-file load errors.
type LoadResult struct {
	Project *types.ProjectSpec
	Errors  []error
}

// Loader reads and validates specification files.
type Loader struct {
	dir      string
	validate *validator.Validate
	logger   *apperrors.Logger
}

// NewLoader creates a loader for the given specs directory.
func NewLoader(dir string, logger *apperrors.Logger) *Loader {
	return &Loader{
		dir:      dir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Load reads project.yaml and every roles/*.yaml file. Missing or invalid
// role files are collected as errors; the project file itself is required.
func (l *Loader) Load() (*LoadResult, error) {
	projectPath := filepath.Join(l.dir, projectFile)
	data, err := os.ReadFile(projectPath)
	if err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecNotFound,
			fmt.Sprintf("Cannot read project spec: %s", projectPath), err)
	}

	var project types.ProjectSpec
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecInvalid,
			fmt.Sprintf("Malformed project spec: %s", projectPath), err)
	}
	if err := l.validate.Struct(&project); err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecInvalid,
			fmt.Sprintf("Invalid project spec: %s", projectPath), err)
	}

	result := &LoadResult{Project: &project}

	rolesDir := filepath.Join(l.dir, rolesSubdir)
	entries, err := os.ReadDir(rolesDir)
	if err != nil {
		if os.IsNotExist(err) {
			// roles may be embedded in project.yaml instead
			return result, nil
		}
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecNotFound,
			fmt.Sprintf("Cannot read roles directory: %s", rolesDir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(rolesDir, name)
		role, err := l.loadRole(path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			if l.logger != nil {
				l.logger.Warn("Skipping invalid role spec", "file", path, "error", err.Error())
			}
			continue
		}
		project.Roles = append(project.Roles, *role)
	}

	return result, nil
}

func (l *Loader) loadRole(path string) (*types.RoleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecNotFound,
			fmt.Sprintf("Cannot read role spec: %s", path), err)
	}

	var role types.RoleSpec
	if err := yaml.Unmarshal(data, &role); err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecInvalid,
			fmt.Sprintf("Malformed role spec: %s", path), err)
	}
	if err := l.validate.Struct(&role); err != nil {
		return nil, apperrors.NewSpecError(apperrors.ErrCodeSpecInvalid,
			fmt.Sprintf("Invalid role spec: %s", path), err)
	}

	clampRole(&role)
	return &role, nil
}

// clampRole repairs minor schema violations instead of rejecting them,
// matching the recoverable-input policy of the analysis core.
func clampRole(role *types.RoleSpec) {
	for i := range role.MustHaveSkills {
		if role.MustHaveSkills[i].Weight < 0 {
			role.MustHaveSkills[i].Weight = 0
		}
	}
	for i := range role.NiceToHaveSkills {
		if role.NiceToHaveSkills[i].Weight < 0 {
			role.NiceToHaveSkills[i].Weight = 0
		}
	}
	if role.MinYearsExperience < 0 {
		role.MinYearsExperience = 0
	}
	if hf := role.Scoring.HardFilters; hf != nil && hf.MaxRedFlagPenalty != nil {
		if *hf.MaxRedFlagPenalty > 25 {
			*hf.MaxRedFlagPenalty = 25
		}
		if *hf.MaxRedFlagPenalty < 0 {
			*hf.MaxRedFlagPenalty = 0
		}
	}
}

// RoleByID finds a role in the loaded project.
func (r *LoadResult) RoleByID(roleID string) (*types.RoleSpec, error) {
	for i := range r.Project.Roles {
		if r.Project.Roles[i].RoleID == roleID {
			return &r.Project.Roles[i], nil
		}
	}
	return nil, apperrors.NewSpecError(apperrors.ErrCodeRoleNotFound,
		fmt.Sprintf("Role %q not found in project %q", roleID, r.Project.ProjectID), nil)
}
