// Package config holds interpreter run configuration: the axis
// vocabulary, modal G-group table, and the handful of limits and
// startup values an NC program run can be tuned with.
package config

// Config is populated by cmd/ncrun's hand-parsed flags or directly by a
// caller; it has no parsing logic of its own.
type Config struct {
	AxisIdentifiers []string
	ExtraAxes       []string

	InitialStateProgram string

	IterationLimit     int
	DisableForwardFill bool

	AutoInitVariables       bool
	VariableInitializations map[string]float64

	ModalGroups    map[string]string
	NonModalGroups map[string]string

	// ModalDefaults maps a modal G-group name to the default value the
	// tabular finalizer's forward-fill seeds that column with, before
	// any row supplies one. Empty by default (no synthetic defaults).
	ModalDefaults map[string]string

	// StrictColumns rejects, instead of silently accepting as a Float64
	// axis column, any row column that is neither a fixed column, a
	// configured modal/non-modal group name, a string-valued column (such
	// as an unrecognized G-word's fallback column), nor a declared axis. Off by
	// default: an NC program may legitimately assign to an axis that
	// was never named via -a/--axes.
	StrictColumns bool
}

const DefaultIterationLimit = 10000

// DefaultAxisIdentifiers is N plus the conventional single-letter axis
// set plus the six rotary/auxiliary RA axes. N's presence here only
// governs IsAxis/DEF collision checks; the tabular finalizer's fixed
// columns (internal/table.fixedColumns) always classify "N" as the
// Int64 block-number column regardless of axis declaration, and the
// parser's block_number production (N<int> at block start) never flows
// through axis assignment at all, so N never actually gets written via
// UpdateAxis in ordinary use.
func DefaultAxisIdentifiers() []string {
	return []string{
		"N", "X", "Y", "Z", "A", "B", "C", "D", "E", "F", "S", "U", "V",
		"RA1", "RA2", "RA3", "RA4", "RA5", "RA6",
	}
}

// DefaultModalGroups supplies a conventional ISO/DIN modal-group table.
// This table was not present in the retrieved reference sources; it is
// a filled gap, not a reinterpretation of anything the original did
// differently. Callers may override via Config.ModalGroups.
func DefaultModalGroups() map[string]string {
	return map[string]string{
		"G0": "motion", "G1": "motion", "G2": "motion", "G3": "motion",
		"G33": "motion", "G38": "motion", "G80": "motion",
		"G17": "plane_selection", "G18": "plane_selection", "G19": "plane_selection",
		"G20": "units", "G21": "units",
		"G90": "distance_mode", "G91": "distance_mode",
		"G93": "feed_mode", "G94": "feed_mode", "G95": "feed_mode",
		"G40": "cutter_compensation", "G41": "cutter_compensation", "G42": "cutter_compensation",
		"G43": "tool_length_compensation", "G44": "tool_length_compensation", "G49": "tool_length_compensation",
		"G54": "work_offset", "G55": "work_offset", "G56": "work_offset",
		"G57": "work_offset", "G58": "work_offset", "G59": "work_offset",
		"G96": "spindle_speed_mode", "G97": "spindle_speed_mode",
	}
}

// DefaultNonModalGroups covers the common non-modal G-codes: codes that
// act once and never persist as part of the row's forward-filled state.
func DefaultNonModalGroups() map[string]string {
	return map[string]string{
		"G4":  "dwell",
		"G28": "reference_return",
		"G30": "reference_return",
		"G92": "coordinate_system_setting",
	}
}

// New builds a Config from the supplied axis identifiers (nil selects
// DefaultAxisIdentifiers) with every other field at its spec default.
func New(axisIdentifiers []string) *Config {
	if axisIdentifiers == nil {
		axisIdentifiers = DefaultAxisIdentifiers()
	}
	return &Config{
		AxisIdentifiers:         axisIdentifiers,
		IterationLimit:          DefaultIterationLimit,
		VariableInitializations: make(map[string]float64),
		ModalGroups:             DefaultModalGroups(),
		NonModalGroups:          DefaultNonModalGroups(),
		ModalDefaults:           make(map[string]string),
	}
}

// ResolvedAxes returns AxisIdentifiers with ExtraAxes appended.
func (c *Config) ResolvedAxes() []string {
	if len(c.ExtraAxes) == 0 {
		return c.AxisIdentifiers
	}
	out := make([]string, 0, len(c.AxisIdentifiers)+len(c.ExtraAxes))
	out = append(out, c.AxisIdentifiers...)
	out = append(out, c.ExtraAxes...)
	return out
}
