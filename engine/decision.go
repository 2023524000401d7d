package engine

import (
	"encoding/json"
	"fmt"
)

// Tool identifies the action a decision selects.
type Tool string

const (
	ToolShell    Tool = "shell"
	ToolFsRead   Tool = "fs_read"
	ToolFsWrite  Tool = "fs_write"
	ToolScaffold Tool = "scaffold"
	ToolSnippet  Tool = "snippet"
	ToolDone     Tool = "done"
)

// ShellArgs parameterize a shell command run.
type ShellArgs struct {
	Command string `json:"command"`
}

// FsReadArgs parameterize a file read.
type FsReadArgs struct {
	Path string `json:"path"`
}

// FsWriteArgs parameterize a file write.
type FsWriteArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ScaffoldArgs parameterize a project scaffold.
type ScaffoldArgs struct {
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
}

// SnippetArgs parameterize an inline code evaluation.
type SnippetArgs struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// DoneArgs carry the model's completion claim.
type DoneArgs struct {
	Reason string `json:"reason"`
}

// Decision is one structured model choice: which tool to run and with what
// arguments. Exactly the variant matching Tool is populated.
type Decision struct {
	Tool     Tool
	Shell    *ShellArgs
	FsRead   *FsReadArgs
	FsWrite  *FsWriteArgs
	Scaffold *ScaffoldArgs
	Snippet  *SnippetArgs
	Done     *DoneArgs
}

// decisionWire is the flat JSON shape the model produces: a tool name and a
// single args object holding the superset of every tool's fields.
type decisionWire struct {
	Tool Tool `json:"tool"`
	Args struct {
		Command  string `json:"command,omitempty"`
		Path     string `json:"path,omitempty"`
		Content  string `json:"content,omitempty"`
		RecipeID string `json:"recipe_id,omitempty"`
		Name     string `json:"name,omitempty"`
		Language string `json:"language,omitempty"`
		Code     string `json:"code,omitempty"`
		Reason   string `json:"reason,omitempty"`
	} `json:"args"`
}

// MarshalJSON renders the wire shape.
func (d Decision) MarshalJSON() ([]byte, error) {
	var w decisionWire
	w.Tool = d.Tool
	switch d.Tool {
	case ToolShell:
		if d.Shell != nil {
			w.Args.Command = d.Shell.Command
		}
	case ToolFsRead:
		if d.FsRead != nil {
			w.Args.Path = d.FsRead.Path
		}
	case ToolFsWrite:
		if d.FsWrite != nil {
			w.Args.Path = d.FsWrite.Path
			w.Args.Content = d.FsWrite.Content
		}
	case ToolScaffold:
		if d.Scaffold != nil {
			w.Args.RecipeID = d.Scaffold.RecipeID
			w.Args.Name = d.Scaffold.Name
		}
	case ToolSnippet:
		if d.Snippet != nil {
			w.Args.Language = d.Snippet.Language
			w.Args.Code = d.Snippet.Code
		}
	case ToolDone:
		if d.Done != nil {
			w.Args.Reason = d.Done.Reason
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire shape and populates exactly one variant.
func (d *Decision) UnmarshalJSON(data []byte) error {
	var w decisionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Decision{Tool: w.Tool}
	switch w.Tool {
	case ToolShell:
		d.Shell = &ShellArgs{Command: w.Args.Command}
	case ToolFsRead:
		d.FsRead = &FsReadArgs{Path: w.Args.Path}
	case ToolFsWrite:
		d.FsWrite = &FsWriteArgs{Path: w.Args.Path, Content: w.Args.Content}
	case ToolScaffold:
		d.Scaffold = &ScaffoldArgs{RecipeID: w.Args.RecipeID, Name: w.Args.Name}
	case ToolSnippet:
		d.Snippet = &SnippetArgs{Language: w.Args.Language, Code: w.Args.Code}
	case ToolDone:
		d.Done = &DoneArgs{Reason: w.Args.Reason}
	case "":
		return fmt.Errorf("decision: missing tool field")
	default:
		return fmt.Errorf("decision: unknown tool %q", w.Tool)
	}
	return nil
}

// Summary is a short human-readable action line for logs and reports.
func (d Decision) Summary() string {
	switch d.Tool {
	case ToolShell:
		return fmt.Sprintf("shell: %s", d.Shell.Command)
	case ToolFsRead:
		return fmt.Sprintf("fs_read: %s", d.FsRead.Path)
	case ToolFsWrite:
		return fmt.Sprintf("fs_write: %s (%d bytes)", d.FsWrite.Path, len(d.FsWrite.Content))
	case ToolScaffold:
		return fmt.Sprintf("scaffold: %s as %q", d.Scaffold.RecipeID, d.Scaffold.Name)
	case ToolSnippet:
		return fmt.Sprintf("snippet: %s (%d chars)", d.Snippet.Language, len(d.Snippet.Code))
	case ToolDone:
		return fmt.Sprintf("done: %s", d.Done.Reason)
	}
	return string(d.Tool)
}

// DecisionSchema is the JSON schema handed to the structured-output contract.
const DecisionSchema = `{
  "type": "object",
  "properties": {
    "tool": {
      "type": "string",
      "enum": ["shell", "fs_read", "fs_write", "scaffold", "snippet", "done"]
    },
    "args": {
      "type": "object",
      "properties": {
        "command": {"type": "string"},
        "path": {"type": "string"},
        "content": {"type": "string"},
        "recipe_id": {"type": "string"},
        "name": {"type": "string"},
        "language": {"type": "string"},
        "code": {"type": "string"},
        "reason": {"type": "string"}
      }
    }
  },
  "required": ["tool", "args"]
}`
