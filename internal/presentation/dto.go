package presentation

import (
	"time"

	"github.com/zjrosen/cardkit/internal/component"
)

// TableDTO represents a whole registry for presentation
type TableDTO struct {
	Manager string           `json:"manager" yaml:"manager"`
	Scopes  []string         `json:"scopes" yaml:"scopes"`
	Meta    component.Meta   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Bunches []BunchDTO       `json:"bunches" yaml:"bunches"`
	Library component.Object `json:"library" yaml:"library"`
	Errors  []ErrorDTO       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// BunchDTO is a registered bunch together with its scope
type BunchDTO struct {
	Scope            string `json:"scope" yaml:"scope"`
	component.Object `yaml:",inline"`
}

// ErrorDTO is a recorded engine error
type ErrorDTO struct {
	Code      component.Code `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Initiator string         `json:"initiator,omitempty" yaml:"initiator,omitempty"`
	Target    string         `json:"target,omitempty" yaml:"target,omitempty"`
	Time      time.Time      `json:"time" yaml:"time"`
}

// FromManager converts a registry, its bunches, library and recorded errors.
func FromManager(m *component.Manager) TableDTO {
	bunches := m.Items()
	dto := TableDTO{
		Manager: m.Key(),
		Scopes:  m.Scopes(),
		Meta:    m.Meta(),
		Bunches: FromBunches(m, bunches),
		Library: m.Library().Object(),
		Errors:  FromErrors(m.Errors()),
	}
	if len(dto.Meta) == 0 {
		dto.Meta = nil
	}
	return dto
}

// FromBunches converts bunches registered in m. Unregistered bunches get an
// empty scope.
func FromBunches(m *component.Manager, bunches []*component.Bunch) []BunchDTO {
	dtos := make([]BunchDTO, 0, len(bunches))
	for _, b := range bunches {
		dto := BunchDTO{Object: b.Object()}
		if _, ok := m.Get(b.ID()); ok {
			dto.Scope, _ = m.GetScope(b.ID())
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

// FromElements converts elements to their structural form.
func FromElements(elements []*component.Element) []component.Object {
	out := make([]component.Object, 0, len(elements))
	for _, e := range elements {
		out = append(out, e.Object())
	}
	return out
}

// FromErrors converts recorded errors, naming initiator and target by String.
func FromErrors(errs []*component.Error) []ErrorDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ErrorDTO, 0, len(errs))
	for _, e := range errs {
		dto := ErrorDTO{Code: e.Code, Message: e.Message, Time: e.Time}
		if e.Initiator != nil {
			dto.Initiator = e.Initiator.String()
		}
		if e.Target != nil {
			dto.Target = e.Target.String()
		}
		out = append(out, dto)
	}
	return out
}
