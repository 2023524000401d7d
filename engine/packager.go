package engine

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// manifestFiles mark a directory as a project root, in preference order.
var manifestFiles = []string{"package.json", "go.mod", "pyproject.toml", "Cargo.toml"}

// skipDirs are never packaged.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"__pycache__":  true,
	"target":       true,
	"dist":         true,
}

// Artifact describes a packaged job result. Base64 carries the archive bytes
// encoded for transports that cannot attach binaries; B64Path points at the
// on-disk copy of the same encoding.
type Artifact struct {
	ZipPath    string `json:"zip_path"`
	B64Path    string `json:"b64_path"`
	Base64     string `json:"base64"`
	ReportPath string `json:"report_path"`
	Project    string `json:"project,omitempty"`
	Files      int    `json:"files"`
	Bytes      int64  `json:"bytes"`
}

// Packager zips the job's work product and writes a run report.
type Packager struct {
	workdir string
	output  string
}

// NewPackager creates a Packager reading from workdir and writing to output.
func NewPackager(workdir, output string) *Packager {
	return &Packager{workdir: workdir, output: output}
}

// findProject locates the shallowest directory under workdir containing a
// recognized manifest. Empty when no project is found.
func (p *Packager) findProject() string {
	type candidate struct {
		dir   string
		depth int
		rank  int
	}
	var found []candidate
	_ = filepath.WalkDir(p.workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		for rank, m := range manifestFiles {
			if d.Name() == m {
				dir := filepath.Dir(path)
				depth := strings.Count(dir[len(p.workdir):], string(filepath.Separator))
				found = append(found, candidate{dir: dir, depth: depth, rank: rank})
			}
		}
		return nil
	})
	if len(found) == 0 {
		return ""
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].depth != found[j].depth {
			return found[i].depth < found[j].depth
		}
		return found[i].rank < found[j].rank
	})
	return found[0].dir
}

// Package zips the detected project (or the whole workdir when no manifest
// is found) into the output directory and writes report.md alongside. The
// zip is also emitted base64-encoded for transports that cannot carry
// binary attachments.
func (p *Packager) Package(state *State) (*Artifact, error) {
	source := p.findProject()
	name := "artifact"
	project := ""
	if source != "" {
		project = filepath.Base(source)
		name = project
	} else {
		source = p.workdir
	}

	zipPath := filepath.Join(p.output, name+".zip")
	files, bytes, err := zipDir(source, zipPath)
	if err != nil {
		return nil, fmt.Errorf("packager: zip %s: %w", source, err)
	}

	encoded, err := writeBase64Copy(zipPath)
	if err != nil {
		return nil, err
	}

	reportPath := filepath.Join(p.output, "report.md")
	if err := p.writeReport(reportPath, state, name+".zip", project); err != nil {
		return nil, err
	}

	return &Artifact{
		ZipPath:    zipPath,
		B64Path:    zipPath + ".b64",
		Base64:     encoded,
		ReportPath: reportPath,
		Project:    project,
		Files:      files,
		Bytes:      bytes,
	}, nil
}

// zipDir writes dir's tree into a zip at dest, returning the file count and
// total uncompressed size.
func zipDir(dir, dest string) (int, int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	files := 0
	var total int64
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		n, err := io.Copy(w, f)
		f.Close()
		if err != nil {
			return err
		}
		files++
		total += n
		return nil
	})
	if err != nil {
		zw.Close()
		return 0, 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, 0, err
	}
	return files, total, nil
}

// writeBase64Copy writes <zip>.b64 next to the zip and returns the encoding.
func writeBase64Copy(zipPath string) (string, error) {
	raw, err := os.ReadFile(zipPath)
	if err != nil {
		return "", fmt.Errorf("packager: read zip: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	if err := os.WriteFile(zipPath+".b64", []byte(encoded), 0o644); err != nil {
		return "", fmt.Errorf("packager: write base64 copy: %w", err)
	}
	return encoded, nil
}

func (p *Packager) writeReport(path string, state *State, zipName, project string) error {
	var b strings.Builder
	b.WriteString("# Job Report\n\n")
	fmt.Fprintf(&b, "- Job: %s\n", state.JobID)
	fmt.Fprintf(&b, "- Task: %s\n", state.Task)
	fmt.Fprintf(&b, "- Completed: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Steps: %d\n", state.Steps)
	if project != "" {
		fmt.Fprintf(&b, "- Project: %s\n", project)
	}
	fmt.Fprintf(&b, "- Artifact: %s\n", zipName)
	if state.Reason != "" {
		fmt.Fprintf(&b, "- Outcome: %s\n", state.Reason)
	}
	b.WriteString("\n## Actions\n\n")
	if len(state.ActionsTaken) == 0 {
		b.WriteString("(none)\n")
	}
	for i, a := range state.ActionsTaken {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("packager: write report: %w", err)
	}
	return nil
}
