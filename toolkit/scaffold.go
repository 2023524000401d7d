package toolkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// fallbackProjectName is used when sanitization empties the requested name.
const fallbackProjectName = "my-app"

// Recipe is a named project-scaffold command template. The command is run
// through the Runner with {name} replaced by the final project name.
type Recipe struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Command     string `json:"command"`
}

// DefaultRecipes is the built-in scaffold registry.
var DefaultRecipes = map[string]Recipe{
	"react-vite-js": {
		Name:        "React (Vite, JavaScript)",
		Description: "React single-page app scaffolded with create-vite",
		Command:     "npm create vite@latest {name} -- --template react",
	},
	"react-vite-ts": {
		Name:        "React (Vite, TypeScript)",
		Description: "React single-page app with TypeScript",
		Command:     "npm create vite@latest {name} -- --template react-ts",
	},
	"node-express": {
		Name:        "Node + Express",
		Description: "Minimal Express server with a package.json",
		Command:     "mkdir -p {name} && cd {name} && npm init -y && npm install express",
	},
}

// ScaffoldResult is the outcome of one scaffold invocation.
type ScaffoldResult struct {
	Status
	RecipeID    string `json:"recipe_id"`
	ProjectName string `json:"project_name,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
	Command     string `json:"command,omitempty"`
	ExitCode    int    `json:"exit_code,omitempty"`
	Stdout      string `json:"stdout,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
}

// RecipeInfo is a registry listing entry.
type RecipeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Scaffolder creates project scaffolds from the recipe registry, running the
// rendered command in the Runner's working directory.
type Scaffolder struct {
	runner  *Runner
	recipes map[string]Recipe
	timeout time.Duration
}

// NewScaffolder creates a Scaffolder over runner. A nil recipes map uses
// DefaultRecipes.
func NewScaffolder(runner *Runner, recipes map[string]Recipe) *Scaffolder {
	if recipes == nil {
		recipes = DefaultRecipes
	}
	return &Scaffolder{runner: runner, recipes: recipes}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)
	hyphenRuns  = regexp.MustCompile(`-+`)
)

// SanitizeName reduces a requested project name to a filesystem-safe slug:
// lowercase, alphanumeric plus hyphen/underscore, collapsed hyphen runs,
// no leading or trailing hyphens. An empty result falls back to "my-app".
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		return fallbackProjectName
	}
	return s
}

// resolveCollision suffixes -1, -2, ... until no directory with that name
// exists under dir.
func resolveCollision(dir, name string) string {
	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
}

// Create scaffolds a project from the named recipe. A zero exit code alone is
// not success: the expected project directory must exist afterwards. Verified
// success carries a completion hint (Done + Reason) the engine may honor.
func (s *Scaffolder) Create(ctx context.Context, recipeID, name string) ScaffoldResult {
	recipe, ok := s.recipes[recipeID]
	if !ok {
		known := make([]string, 0, len(s.recipes))
		for id := range s.recipes {
			known = append(known, id)
		}
		sort.Strings(known)
		return ScaffoldResult{
			Status: Failure(fmt.Sprintf("recipe %q not found, available: %s",
				recipeID, strings.Join(known, ", "))),
			RecipeID: recipeID,
		}
	}

	if name == "" {
		name = fallbackProjectName
	}
	name = SanitizeName(name)
	name = resolveCollision(s.runner.Dir(), name)

	command := strings.ReplaceAll(recipe.Command, "{name}", name)
	res := s.runner.Run(ctx, command, s.timeout)

	if !res.OK {
		return ScaffoldResult{
			Status:      Failure("scaffold command failed"),
			RecipeID:    recipeID,
			ProjectName: name,
			Command:     command,
			ExitCode:    res.ExitCode,
			Stdout:      res.Stdout,
			Stderr:      res.Stderr,
		}
	}

	projectPath := filepath.Join(s.runner.Dir(), name)
	if _, err := os.Stat(projectPath); err != nil {
		return ScaffoldResult{
			Status:      Failure("scaffold command finished but project directory missing"),
			RecipeID:    recipeID,
			ProjectName: name,
			Command:     command,
			ExitCode:    res.ExitCode,
			Stdout:      res.Stdout,
			Stderr:      res.Stderr,
		}
	}

	return ScaffoldResult{
		Status: Status{
			OK:     true,
			Done:   true,
			Reason: fmt.Sprintf("scaffolded %s project %q", recipeID, name),
		},
		RecipeID:    recipeID,
		ProjectName: name,
		ProjectPath: projectPath,
		Command:     command,
		ExitCode:    res.ExitCode,
		Stdout:      res.Stdout,
		Stderr:      res.Stderr,
	}
}

// Recipes lists the registry sorted by id.
func (s *Scaffolder) Recipes() []RecipeInfo {
	out := make([]RecipeInfo, 0, len(s.recipes))
	for id, r := range s.recipes {
		out = append(out, RecipeInfo{ID: id, Name: r.Name, Description: r.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
