package config

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ionspid/taxassign/internal/model"
)

// Profile is one named parameter preset. Unset numeric fields inherit
// from the defaults the profile set was loaded with.
type Profile struct {
	Method     string           `yaml:"method"`
	Thresholds model.Thresholds `yaml:",inline"`
	Workers    int              `yaml:"workers"`
}

// ProfileSet holds named presets loaded from a YAML file.
type ProfileSet struct {
	profiles map[string]Profile
}

// LoadProfiles reads a profile file and fills unset fields from base.
func LoadProfiles(path string, base AssignConfig) (*ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read profiles %s", path)
	}

	// The YAML has a top-level "profiles" key
	var wrapper struct {
		Profiles map[string]Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "config: parse profiles %s", path)
	}

	for name, p := range wrapper.Profiles {
		if p.Method == "" {
			p.Method = base.Method
		}
		if _, err := model.ParseMethod(p.Method); err != nil {
			return nil, eris.Wrapf(err, "config: profile %s", name)
		}
		p.Thresholds = fillThresholds(p.Thresholds, base.Thresholds())
		if p.Workers == 0 {
			p.Workers = base.Workers
		}
		wrapper.Profiles[name] = p
	}

	return &ProfileSet{profiles: wrapper.Profiles}, nil
}

// Get looks up a profile by name.
func (s *ProfileSet) Get(name string) (Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, &model.ValidationError{Field: "profile", Reason: "unknown profile " + name}
	}
	return p, nil
}

// Names lists the loaded profile names in sorted order.
func (s *ProfileSet) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fillThresholds(t, base model.Thresholds) model.Thresholds {
	if t.MinIdentity == 0 {
		t.MinIdentity = base.MinIdentity
	}
	if t.MinCoverage == 0 {
		t.MinCoverage = base.MinCoverage
	}
	if t.MaxEValue == 0 {
		t.MaxEValue = base.MaxEValue
	}
	if t.MinBitScore == 0 {
		t.MinBitScore = base.MinBitScore
	}
	if t.TopHits == 0 {
		t.TopHits = base.TopHits
	}
	if t.ConsensusFraction == 0 {
		t.ConsensusFraction = base.ConsensusFraction
	}
	if t.MinWeightShare == 0 {
		t.MinWeightShare = base.MinWeightShare
	}
	return t
}
