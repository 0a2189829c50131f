// Package profile loads agent briefs: the operator-authored description
// of the agent under evaluation. A brief is either a markdown file with
// YAML frontmatter (the body becomes free-form notes in the report) or a
// plain YAML file. Loading produces the profile plus any dataset or
// metric overrides the brief declares; compilation itself happens in
// pkg/plan.
package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

// Brief is a loaded agent brief: the profile plus optional overrides.
type Brief struct {
	Profile   plan.AgentProfile
	Overrides *plan.Overrides
}

// briefFile mirrors the YAML surface of a brief. Markdown frontmatter and
// standalone YAML files share this shape.
type briefFile struct {
	Name            string         `yaml:"name"`
	AgentType       string         `yaml:"agent_type"`
	PrimaryGoal     string         `yaml:"primary_goal"`
	SuccessCriteria []string       `yaml:"success_criteria"`
	FailureModes    []string       `yaml:"failure_modes"`
	TotalCases      int            `yaml:"total_cases"`
	Distribution    map[string]int `yaml:"distribution"`
	LatencyBound    string         `yaml:"latency_bound"`
}

// Load reads a brief from disk, dispatching on the file extension:
// .md/.markdown for frontmatter briefs, .yaml/.yml for plain YAML.
func Load(path string) (*Brief, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read brief %q", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return parseMarkdown(content)
	case ".yaml", ".yml":
		return parseYAML(content)
	default:
		return nil, errors.Errorf("unsupported brief format %q: expected .md, .markdown, .yaml, or .yml", filepath.Ext(path))
	}
}

// parseMarkdown extracts the YAML frontmatter and carries the markdown
// body as free-form notes.
func parseMarkdown(content []byte) (*Brief, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse brief markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("brief has no YAML frontmatter")
	}

	// Round-trip through YAML so nested frontmatter values land in the
	// typed struct instead of hand-coerced interface maps.
	raw, err := yamlv2.Marshal(metaData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to re-encode brief frontmatter")
	}

	var file briefFile
	if err := yamlv2.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(err, "failed to decode brief frontmatter")
	}

	brief, err := file.toBrief()
	if err != nil {
		return nil, err
	}

	brief.Profile.Notes = extractBody(string(content))
	return brief, nil
}

// parseYAML decodes a standalone YAML brief.
func parseYAML(content []byte) (*Brief, error) {
	var file briefFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, errors.Wrap(err, "failed to decode YAML brief")
	}
	return file.toBrief()
}

// toBrief validates the decoded brief and converts it to the compiler's
// input types. Validation errors name the offending field.
func (f briefFile) toBrief() (*Brief, error) {
	if f.AgentType == "" {
		return nil, errors.New("brief is missing required field agent_type")
	}
	agentType, err := plan.ParseAgentType(f.AgentType)
	if err != nil {
		return nil, errors.Wrap(err, "invalid field agent_type")
	}

	if f.PrimaryGoal == "" {
		return nil, errors.New("brief is missing required field primary_goal")
	}

	brief := &Brief{
		Profile: plan.AgentProfile{
			Name:            f.Name,
			AgentType:       agentType,
			PrimaryGoal:     f.PrimaryGoal,
			SuccessCriteria: f.SuccessCriteria,
			FailureModes:    f.FailureModes,
		},
	}

	overrides := &plan.Overrides{TotalCases: f.TotalCases}
	hasOverrides := f.TotalCases > 0

	if f.Distribution != nil {
		dist := make(map[plan.Category]int, len(f.Distribution))
		for key, count := range f.Distribution {
			switch plan.Category(key) {
			case plan.CategoryHappyPath, plan.CategoryEdgeCase, plan.CategoryAdversarial:
				dist[plan.Category(key)] = count
			default:
				return nil, errors.Errorf("invalid field distribution: unknown category %q", key)
			}
		}
		overrides.Distribution = dist
		hasOverrides = true
	}

	if f.LatencyBound != "" {
		bound, err := time.ParseDuration(f.LatencyBound)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid field latency_bound %q", f.LatencyBound)
		}
		overrides.LatencyBound = bound
		hasOverrides = true
	}

	if hasOverrides {
		brief.Overrides = overrides
	}

	return brief, nil
}

// extractBody strips the frontmatter block and returns the markdown body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return strings.TrimSpace(content)
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return strings.TrimSpace(content)
	}

	return strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
}
