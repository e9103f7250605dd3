package report

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// SectionState distinguishes a section that is left out of the report from
// one that is shown, possibly with every content block switched off.
type SectionState uint8

const (
	SectionAbsent SectionState = iota
	SectionPresent
)

func (s SectionState) String() string {
	if s == SectionPresent {
		return "present"
	}
	return "absent"
}

// Section is an optional config group. JSON/YAML null or a missing key is
// Absent; any object, including {}, is Present.
type Section[T any] struct {
	state SectionState
	value T
}

func Present[T any](v T) Section[T] { return Section[T]{state: SectionPresent, value: v} }

func Absent[T any]() Section[T] { return Section[T]{} }

func (s Section[T]) State() SectionState { return s.state }

func (s Section[T]) IsPresent() bool { return s.state == SectionPresent }

// Get returns the group and whether it is present.
func (s Section[T]) Get() (T, bool) { return s.value, s.state == SectionPresent }

func (s Section[T]) MarshalJSON() ([]byte, error) {
	if s.state != SectionPresent {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *Section[T]) UnmarshalJSON(b []byte) error {
	var zero T
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		s.state, s.value = SectionAbsent, zero
		return nil
	}
	v := zero
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.state, s.value = SectionPresent, v
	return nil
}

func (s Section[T]) MarshalYAML() (interface{}, error) {
	if s.state != SectionPresent {
		return nil, nil
	}
	return s.value, nil
}

func (s *Section[T]) UnmarshalYAML(n *yaml.Node) error {
	var zero T
	if n.Tag == "!!null" {
		s.state, s.value = SectionAbsent, zero
		return nil
	}
	v := zero
	if err := n.Decode(&v); err != nil {
		return err
	}
	s.state, s.value = SectionPresent, v
	return nil
}

// AssetGroup configures the cookie and chip sections. The usage block is
// shown when Usage is non-empty.
type AssetGroup struct {
	Usage  string `json:"usage" yaml:"usage"`
	Asset  bool   `json:"asset" yaml:"asset"`
	Review bool   `json:"review" yaml:"review"`
}

type BadgeGroup struct {
	Usage  string `json:"usage" yaml:"usage"`
	Status bool   `json:"status" yaml:"status"`
}

type SummaryGroup struct {
	Summary          bool `json:"summary" yaml:"summary"`
	PraiseAndResolve bool `json:"praiseAndResolve" yaml:"praiseAndResolve"`
	ParentComment    bool `json:"parentComment" yaml:"parentComment"`
}

// Config selects which report sections are shown and what they say.
type Config struct {
	GeneralUsage string                `json:"generalUsage" yaml:"generalUsage" validate:"notblank"`
	Cookie       Section[AssetGroup]   `json:"cookie" yaml:"cookie"`
	Chip         Section[AssetGroup]   `json:"chip" yaml:"chip"`
	Badge        Section[BadgeGroup]   `json:"badge" yaml:"badge"`
	Summary      Section[SummaryGroup] `json:"summary" yaml:"summary"`
}
