package config

import (
	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// fileSchema is the root structure of verify.yaml.
type fileSchema struct {
	Verifications []itemDTO `yaml:"verifications"`
}

// itemDTO is either a check (command set) or a subproject reference (path
// set). At most one of the two may be present: both is an error, and
// neither makes the item an aggregate check.
type itemDTO struct {
	Name        string                     `yaml:"name"`
	Command     string                     `yaml:"command"`
	CachePaths  []string                   `yaml:"cache_paths"`
	DependsOn   []string                   `yaml:"depends_on"`
	TimeoutSecs *int                       `yaml:"timeout_secs"`
	PerFile     bool                       `yaml:"per_file"`
	Metadata    map[string]metadataPattern `yaml:"metadata"`
	Path        string                     `yaml:"path"`

	hasCommand bool
	hasPath    bool
}

// metadataPattern accepts either a bare regex string ("first capture
// group") or a two-element [pattern, replacement] sequence.
type metadataPattern struct {
	Regex       string
	Replacement string
	HasReplace  bool
}

func (p *metadataPattern) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		p.Regex = s
		return nil
	case yaml.SequenceNode:
		var pair [2]string
		if err := value.Decode(&pair); err != nil {
			return zerr.Wrap(err, "metadata pattern must be a string or a [pattern, replacement] pair")
		}
		p.Regex = pair[0]
		p.Replacement = pair[1]
		p.HasReplace = true
		return nil
	default:
		return zerr.New("metadata pattern must be a string or a [pattern, replacement] pair")
	}
}

// knownItemFields is the set of yaml tags itemDTO recognises. Node.Decode
// does not honour a parent Decoder's KnownFields(true) (it is not routed
// through the Decoder at all), so unknown-field rejection for each
// verification item is checked by hand here (spec.md §6: "Unknown fields
// are rejected").
var knownItemFields = map[string]bool{
	"name": true, "command": true, "cache_paths": true, "depends_on": true,
	"timeout_secs": true, "per_file": true, "metadata": true, "path": true,
}

func (i *itemDTO) UnmarshalYAML(value *yaml.Node) error {
	type plain itemDTO
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*i = itemDTO(p)

	fields := map[string]bool{}
	for idx := 0; idx+1 < len(value.Content); idx += 2 {
		key := value.Content[idx].Value
		fields[key] = true
		if !knownItemFields[key] {
			return zerr.With(zerr.New("unknown field in verification item"), "field", key)
		}
	}
	i.hasCommand = fields["command"]
	i.hasPath = fields["path"]

	// command and path are mutually exclusive; neither set is the
	// Aggregate kind (spec.md §3), not an error.
	if i.hasCommand && i.hasPath {
		return zerr.With(domain.ErrAmbiguousDefinition, "name", i.Name)
	}

	return nil
}

func (i *itemDTO) toCheck() domain.Check {
	timeout := 0
	if i.TimeoutSecs != nil {
		timeout = *i.TimeoutSecs
	}

	var metadata map[string]domain.MetadataPattern
	if len(i.Metadata) > 0 {
		metadata = make(map[string]domain.MetadataPattern, len(i.Metadata))
		for field, pat := range i.Metadata {
			metadata[field] = domain.MetadataPattern{
				Regex:       pat.Regex,
				Replacement: pat.Replacement,
				HasReplace:  pat.HasReplace,
			}
		}
	}

	return domain.Check{
		Name:         domain.NewInternedString(i.Name),
		Command:      i.Command,
		HasCommand:   i.hasCommand,
		CachePaths:   i.CachePaths,
		Dependencies: domain.NewInternedStrings(i.DependsOn),
		TimeoutSecs:  timeout,
		PerFile:      i.PerFile,
		Metadata:     metadata,
		Path:         i.Path,
		HasPath:      i.hasPath,
	}
}
