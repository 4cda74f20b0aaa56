// Package domain defines the maintenance report entity tree, its tagged
// variants, and the persistence contracts consumed by the report engine.
package domain

import "fmt"

// Variant identifies the report shape being authored.
type Variant string

// Supported report variants.
const (
	// VariantFixed covers centrale/automate installations with wired detectors.
	VariantFixed Variant = "fixed"
	// VariantPortable covers handheld detector fleets.
	VariantPortable Variant = "portable"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantFixed || v == VariantPortable
}

// ParseVariant converts a flat string into a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown report variant %q", s)
	}
	return v, nil
}

// UnitKind distinguishes the two kinds of fixed equipment units.
type UnitKind string

// Unit kinds.
const (
	UnitCentrale UnitKind = "centrale"
	UnitAutomate UnitKind = "automate"
)

// Valid reports whether k is a known unit kind.
func (k UnitKind) Valid() bool {
	return k == UnitCentrale || k == UnitAutomate
}

// InterlockState is the tri-state outcome of an interlock test. The zero
// value means the state has not been recorded.
type InterlockState string

// Interlock states.
const (
	InterlockUnset          InterlockState = ""
	InterlockOperational    InterlockState = "operational"
	InterlockPartial        InterlockState = "partial"
	InterlockNonOperational InterlockState = "non_operational"
)

// Valid reports whether s is unset or one of the three recorded states.
func (s InterlockState) Valid() bool {
	switch s {
	case InterlockUnset, InterlockOperational, InterlockPartial, InterlockNonOperational:
		return true
	}
	return false
}

// ParseInterlockState converts a stored column value. Unknown values map to
// InterlockUnset so a legacy row never blocks hydration.
func ParseInterlockState(s string) InterlockState {
	st := InterlockState(s)
	if !st.Valid() {
		return InterlockUnset
	}
	return st
}

// Intervention is the root of a report: one maintenance visit.
type Intervention struct {
	ID                string             `json:"id" yaml:"id,omitempty"`
	Variant           Variant            `json:"variant" yaml:"variant"`
	Date              string             `json:"date" yaml:"date"`
	StartTime         string             `json:"start_time" yaml:"start_time"`
	EndTime           string             `json:"end_time" yaml:"end_time"`
	Technician        string             `json:"technician" yaml:"technician"`
	Types             []string           `json:"types" yaml:"types"`
	ClientID          string             `json:"client_id" yaml:"client_id"`
	SiteID            string             `json:"site_id" yaml:"site_id"`
	Contact           Contact            `json:"contact" yaml:"contact"`
	Observations      string             `json:"observations" yaml:"observations,omitempty"`
	Conclusion        string             `json:"conclusion" yaml:"conclusion,omitempty"`
	Units             []Unit             `json:"units,omitempty" yaml:"units,omitempty"`
	PortableDetectors []PortableDetector `json:"portable_detectors,omitempty" yaml:"portable_detectors,omitempty"`
	Photos            []Photo            `json:"photos,omitempty" yaml:"photos,omitempty"`
}

// Contact is the on-site contact for an intervention.
type Contact struct {
	Name  string `json:"name" yaml:"name,omitempty"`
	Phone string `json:"phone" yaml:"phone,omitempty"`
	Email string `json:"email" yaml:"email,omitempty"`
}

// Unit is a centrale or automate under inspection.
type Unit struct {
	ID              string          `json:"id" yaml:"id,omitempty"`
	Kind            UnitKind        `json:"kind" yaml:"kind"`
	Make            string          `json:"make" yaml:"make"`
	Model           string          `json:"model" yaml:"model"`
	SerialNumber    string          `json:"serial_number" yaml:"serial_number"`
	Firmware        string          `json:"firmware" yaml:"firmware,omitempty"`
	Location        string          `json:"location" yaml:"location,omitempty"`
	Condition       string          `json:"condition" yaml:"condition,omitempty"`
	BackupPower     *BackupPower    `json:"backup_power,omitempty" yaml:"backup_power,omitempty"`
	GasDetectors    []GasDetector   `json:"gas_detectors,omitempty" yaml:"gas_detectors,omitempty"`
	FlameDetectors  []FlameDetector `json:"flame_detectors,omitempty" yaml:"flame_detectors,omitempty"`
	WorkDone        string          `json:"work_done" yaml:"work_done,omitempty"`
	Anomalies       string          `json:"anomalies" yaml:"anomalies,omitempty"`
	Recommendations string          `json:"recommendations" yaml:"recommendations,omitempty"`
	PartsReplaced   string          `json:"parts_replaced" yaml:"parts_replaced,omitempty"`
}

// HasObservations reports whether any free-text observation field is filled.
func (u Unit) HasObservations() bool {
	return u.WorkDone != "" || u.Anomalies != "" || u.Recommendations != "" || u.PartsReplaced != ""
}

// BackupPower records the battery / secondary supply of a unit.
type BackupPower struct {
	ID       string `json:"id" yaml:"id,omitempty"`
	Type     string `json:"type" yaml:"type,omitempty"`
	Voltage  string `json:"voltage" yaml:"voltage,omitempty"`
	Capacity string `json:"capacity" yaml:"capacity,omitempty"`
	TestDate string `json:"test_date" yaml:"test_date,omitempty"`
	Status   string `json:"status" yaml:"status,omitempty"`
}

// ZeroCalibration is the zero-point calibration record of a sensor.
type ZeroCalibration struct {
	ReferenceGas string `json:"reference_gas" yaml:"reference_gas,omitempty"`
	Before       string `json:"before" yaml:"before,omitempty"`
	After        string `json:"after" yaml:"after,omitempty"`
	Status       string `json:"status" yaml:"status,omitempty"`
}

// SensitivityCalibration is the span calibration record of a sensor.
// GasValue is the theoretical concentration of the test gas; Coefficient is
// GasValue divided by the Before reading.
type SensitivityCalibration struct {
	TestGas     string `json:"test_gas" yaml:"test_gas,omitempty"`
	GasValue    string `json:"gas_value" yaml:"gas_value,omitempty"`
	Before      string `json:"before" yaml:"before,omitempty"`
	After       string `json:"after" yaml:"after,omitempty"`
	Unit        string `json:"unit" yaml:"unit,omitempty"`
	Coefficient string `json:"coefficient" yaml:"coefficient,omitempty"`
	Status      string `json:"status" yaml:"status,omitempty"`
}

// GasDetector is a fixed gas sensing head wired to a unit.
type GasDetector struct {
	ID              string                 `json:"id" yaml:"id,omitempty"`
	Make            string                 `json:"make" yaml:"make"`
	Model           string                 `json:"model" yaml:"model,omitempty"`
	SerialNumber    string                 `json:"serial_number" yaml:"serial_number,omitempty"`
	Location        string                 `json:"location" yaml:"location,omitempty"`
	GasType         string                 `json:"gas_type" yaml:"gas_type,omitempty"`
	Connection      string                 `json:"connection" yaml:"connection,omitempty"`
	Range           string                 `json:"range" yaml:"range,omitempty"`
	Zero            ZeroCalibration        `json:"zero" yaml:"zero,omitempty"`
	Sensitivity     SensitivityCalibration `json:"sensitivity" yaml:"sensitivity,omitempty"`
	Operational     bool                   `json:"operational" yaml:"operational"`
	Replaced        bool                   `json:"replaced" yaml:"replaced,omitempty"`
	LastReplacement string                 `json:"last_replacement" yaml:"last_replacement,omitempty"`
	NextReplacement string                 `json:"next_replacement" yaml:"next_replacement,omitempty"`
	Thresholds      []AlarmThreshold       `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// AlarmThreshold is a configured trigger level of a gas detector. The three
// boolean axes are independent: an untested threshold may still be
// operational.
type AlarmThreshold struct {
	ID             string         `json:"id" yaml:"id,omitempty"`
	Name           string         `json:"name" yaml:"name,omitempty"`
	Value          string         `json:"value" yaml:"value"`
	Unit           string         `json:"unit" yaml:"unit,omitempty"`
	Interlock      string         `json:"interlock" yaml:"interlock,omitempty"`
	InterlockState InterlockState `json:"interlock_state" yaml:"interlock_state,omitempty"`
	Operational    bool           `json:"operational" yaml:"operational"`
	Supervised     bool           `json:"supervised" yaml:"supervised"`
	Untested       bool           `json:"untested" yaml:"untested"`
}

// FlameDetector is a fixed flame sensor wired to a unit. It has no children.
type FlameDetector struct {
	ID             string         `json:"id" yaml:"id,omitempty"`
	Make           string         `json:"make" yaml:"make"`
	Model          string         `json:"model" yaml:"model,omitempty"`
	SerialNumber   string         `json:"serial_number" yaml:"serial_number,omitempty"`
	Location       string         `json:"location" yaml:"location,omitempty"`
	Connection     string         `json:"connection" yaml:"connection,omitempty"`
	TestDistance   string         `json:"test_distance" yaml:"test_distance,omitempty"`
	ResponseTime   string         `json:"response_time" yaml:"response_time,omitempty"`
	TestStatus     string         `json:"test_status" yaml:"test_status,omitempty"`
	Interlock      string         `json:"interlock" yaml:"interlock,omitempty"`
	InterlockState InterlockState `json:"interlock_state" yaml:"interlock_state,omitempty"`
	Operational    bool           `json:"operational" yaml:"operational"`
}

// PortableDetector is a handheld instrument of a portable report.
type PortableDetector struct {
	ID             string        `json:"id" yaml:"id,omitempty"`
	Make           string        `json:"make" yaml:"make"`
	Model          string        `json:"model" yaml:"model"`
	SerialNumber   string        `json:"serial_number" yaml:"serial_number"`
	Condition      string        `json:"condition" yaml:"condition,omitempty"`
	AudibleAlarm   bool          `json:"audible_alarm" yaml:"audible_alarm"`
	VisualAlarm    bool          `json:"visual_alarm" yaml:"visual_alarm"`
	VibratingAlarm bool          `json:"vibrating_alarm" yaml:"vibrating_alarm"`
	PartsReplaced  string        `json:"parts_replaced" yaml:"parts_replaced,omitempty"`
	Gases          []PortableGas `json:"gases,omitempty" yaml:"gases,omitempty"`
}

// PortableGas is one sensor cell of a portable detector. Its alarm levels are
// flat value fields rather than a threshold list.
type PortableGas struct {
	ID                string                 `json:"id" yaml:"id,omitempty"`
	GasType           string                 `json:"gas_type" yaml:"gas_type"`
	Range             string                 `json:"range" yaml:"range,omitempty"`
	Zero              ZeroCalibration        `json:"zero" yaml:"zero,omitempty"`
	Sensitivity       SensitivityCalibration `json:"sensitivity" yaml:"sensitivity,omitempty"`
	LowAlarm          string                 `json:"low_alarm" yaml:"low_alarm,omitempty"`
	HighAlarm         string                 `json:"high_alarm" yaml:"high_alarm,omitempty"`
	ShortTermLimit    string                 `json:"short_term_limit" yaml:"short_term_limit,omitempty"`
	TimeWeightedLimit string                 `json:"time_weighted_limit" yaml:"time_weighted_limit,omitempty"`
	OverRange         string                 `json:"over_range" yaml:"over_range,omitempty"`
}

// Photo is an image attached to a report. Data holds bytes awaiting upload;
// Path is set once the blob exists in storage.
type Photo struct {
	ID          string `json:"id" yaml:"id,omitempty"`
	Category    string `json:"category" yaml:"category"`
	FileName    string `json:"file_name" yaml:"file_name,omitempty"`
	ContentType string `json:"content_type" yaml:"content_type,omitempty"`
	Path        string `json:"path" yaml:"path,omitempty"`
	Data        []byte `json:"-" yaml:"-"`
}

// PhotoCategoryConclusion tags photos attached on the conclusion step.
const PhotoCategoryConclusion = "conclusion"
