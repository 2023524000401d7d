package toolkit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testRecipes scaffold with plain shell so tests need no npm.
var testRecipes = map[string]Recipe{
	"basic": {
		Name:        "Basic",
		Description: "empty project directory with a manifest",
		Command:     "mkdir -p {name} && echo '{}' > {name}/package.json",
	},
	"hollow": {
		Name:        "Hollow",
		Description: "exits cleanly without creating anything",
		Command:     "true",
	},
	"broken": {
		Name:        "Broken",
		Description: "always fails",
		Command:     "exit 1",
	},
}

func newTestScaffolder(t *testing.T) *Scaffolder {
	t.Helper()
	r, err := NewRunner(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return NewScaffolder(r, testRecipes)
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My Cool App!!", "my-cool-app"},
		{"hello_world", "hello_world"},
		{"--weird--", "weird"},
		{"UPPER", "upper"},
		{"!!!", "my-app"},
		{"", "my-app"},
		{"a  b   c", "a-b-c"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateVerifiedSuccess(t *testing.T) {
	s := newTestScaffolder(t)
	res := s.Create(context.Background(), "basic", "My App")
	if !res.OK {
		t.Fatalf("create failed: %+v", res)
	}
	if !res.Done {
		t.Error("verified scaffold should carry a completion hint")
	}
	if res.Reason == "" {
		t.Error("completion hint needs a reason")
	}
	if res.ProjectName != "my-app" {
		t.Errorf("project name = %q", res.ProjectName)
	}
	if _, err := os.Stat(filepath.Join(res.ProjectPath, "package.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
}

func TestCreateNameCollision(t *testing.T) {
	s := newTestScaffolder(t)
	first := s.Create(context.Background(), "basic", "demo")
	second := s.Create(context.Background(), "basic", "demo")
	third := s.Create(context.Background(), "basic", "demo")
	if first.ProjectName != "demo" {
		t.Errorf("first = %q", first.ProjectName)
	}
	if second.ProjectName != "demo-1" {
		t.Errorf("second = %q", second.ProjectName)
	}
	if third.ProjectName != "demo-2" {
		t.Errorf("third = %q", third.ProjectName)
	}
}

func TestCreateUnknownRecipe(t *testing.T) {
	s := newTestScaffolder(t)
	res := s.Create(context.Background(), "rails", "app")
	if res.OK {
		t.Fatal("expected failure for unknown recipe")
	}
	for _, id := range []string{"basic", "broken", "hollow"} {
		if !strings.Contains(res.Error, id) {
			t.Errorf("error should list %q: %q", id, res.Error)
		}
	}
}

func TestCreateCommandFailure(t *testing.T) {
	s := newTestScaffolder(t)
	res := s.Create(context.Background(), "broken", "app")
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Done {
		t.Error("failed scaffold must not hint completion")
	}
	if res.ExitCode != 1 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
}

func TestCreateVerificationFailure(t *testing.T) {
	s := newTestScaffolder(t)
	res := s.Create(context.Background(), "hollow", "app")
	if res.OK {
		t.Fatal("zero exit without a project directory is not success")
	}
	if !strings.Contains(res.Error, "directory missing") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestRecipesListing(t *testing.T) {
	s := newTestScaffolder(t)
	infos := s.Recipes()
	if len(infos) != 3 {
		t.Fatalf("got %d recipes", len(infos))
	}
	if infos[0].ID != "basic" || infos[1].ID != "broken" || infos[2].ID != "hollow" {
		t.Errorf("not sorted: %+v", infos)
	}
}

func TestDefaultRecipesHavePlaceholders(t *testing.T) {
	for id, r := range DefaultRecipes {
		if !strings.Contains(r.Command, "{name}") {
			t.Errorf("recipe %q command lacks {name}: %q", id, r.Command)
		}
	}
}
