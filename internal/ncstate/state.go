// Package ncstate holds the interpreter's mutable run state: the symbol
// table, axis registry, frame translations and the configuration that
// governs them (iteration limit, modal defaults, auto-init).
package ncstate

import (
	"math"

	nerr "nctrace/internal/errors"
)

// State is owned exclusively by one interpreter run. It is not safe for
// concurrent use.
type State struct {
	SymbolTable  map[string]float64
	Axes         map[string]float64
	Translations map[string]float64

	axisSet   []string
	axisIndex map[string]bool

	IterationLimit int
	ModalDefaults  map[string]string

	// AutoInitVariables: reading an undefined variable inserts 0.0 instead
	// of raising UnknownVariable.
	AutoInitVariables bool
}

// New builds a State with the given declared axes; their order is kept
// and reported by AxisNames.
func New(axisIdentifiers []string, iterationLimit int) *State {
	idx := make(map[string]bool, len(axisIdentifiers))
	axes := make(map[string]float64, len(axisIdentifiers))
	for _, a := range axisIdentifiers {
		idx[a] = true
	}
	return &State{
		SymbolTable:    make(map[string]float64),
		Axes:           axes,
		Translations:   make(map[string]float64),
		axisSet:        append([]string(nil), axisIdentifiers...),
		axisIndex:      idx,
		IterationLimit: iterationLimit,
		ModalDefaults:  make(map[string]string),
	}
}

// AxisNames returns the declared axis names in declaration order.
func (s *State) AxisNames() []string {
	return s.axisSet
}

// IsAxis reports whether name was declared as an axis (I1: an axis name is
// never also a variable name).
func (s *State) IsAxis(name string) bool {
	return s.axisIndex[name]
}

func checkFinite(kind string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nerr.New(nerr.ArithmeticError, "%s produced a non-finite value (%v)", kind, v)
	}
	return nil
}

// LookupVariable reads a scalar variable. When the name is undefined and
// AutoInitVariables is set, 0.0 is inserted and returned instead of
// raising UnknownVariable.
func (s *State) LookupVariable(name string) (float64, error) {
	if v, ok := s.SymbolTable[name]; ok {
		return v, nil
	}
	if s.AutoInitVariables {
		s.SymbolTable[name] = 0.0
		return 0.0, nil
	}
	return 0, nerr.New(nerr.UnknownVariable, "undefined variable %q", name)
}

// SetVariable stores value under name in the symbol table. Callers are
// responsible for having already checked IsAxis(name) is false.
func (s *State) SetVariable(name string, value float64) error {
	if err := checkFinite("assignment", value); err != nil {
		return err
	}
	s.SymbolTable[name] = value
	return nil
}

// DefineVariable implements DEF: introduces name with default 0.0, or
// fails AxisUsedAsVariable if name collides with a declared axis.
func (s *State) DefineVariable(name string) error {
	if s.IsAxis(name) {
		return nerr.New(nerr.AxisUsedAsVariable, "cannot define %q, it is a declared axis", name)
	}
	s.SymbolTable[name] = 0.0
	return nil
}

// AxisValue returns the current commanded (untranslated) value of an axis.
func (s *State) AxisValue(name string) (float64, bool) {
	v, ok := s.Axes[name]
	return v, ok
}

// UpdateAxis records value in the axis registry and returns the value that
// should be published into the current row: value+translation if
// translate is true, else value unchanged (the IC(..) increment case).
func (s *State) UpdateAxis(name string, value float64, translate bool) (float64, error) {
	if err := checkFinite("axis assignment", value); err != nil {
		return 0, err
	}
	s.Axes[name] = value
	if !translate {
		return value, nil
	}
	effective := value + s.Translations[name]
	if err := checkFinite("translated axis value", effective); err != nil {
		return 0, err
	}
	return effective, nil
}

// Translation returns the current additive offset for an axis (0 if unset).
func (s *State) Translation(name string) float64 {
	return s.Translations[name]
}

// SetTranslation implements TRANS: the raw axes map is untouched.
func (s *State) SetTranslation(name string, value float64) error {
	if err := checkFinite("translation", value); err != nil {
		return err
	}
	s.Translations[name] = value
	return nil
}
