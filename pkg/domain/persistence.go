package domain

import "context"

// EntityKind identifies the type of record stored by a Repository.
type EntityKind string

// Record kinds written by the report engine and read by the directory.
const (
	KindIntervention     EntityKind = "intervention"
	KindUnit             EntityKind = "unit"
	KindBackupPower      EntityKind = "backup_power"
	KindUnitObservation  EntityKind = "unit_observation"
	KindGasDetector      EntityKind = "gas_detector"
	KindAlarmThreshold   EntityKind = "alarm_threshold"
	KindFlameDetector    EntityKind = "flame_detector"
	KindPortableDetector EntityKind = "portable_detector"
	KindPortableGas      EntityKind = "portable_gas"
	KindPhoto            EntityKind = "photo"
	KindClient           EntityKind = "client"
	KindSite             EntityKind = "site"
	KindTechnician       EntityKind = "technician"
)

// Fields is the flat column set of a record. Values are strings, booleans,
// float64 numbers, string lists, or nil for null.
type Fields map[string]any

// Clone returns a shallow copy with string lists duplicated.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Record is a stored row. ParentID is empty for top-level records.
type Record struct {
	ID       string     `json:"id"`
	Kind     EntityKind `json:"kind"`
	ParentID string     `json:"parent_id"`
	Fields   Fields     `json:"fields"`
}

// Repository is the backing store the report engine writes through. It has
// no multi-call transactions: every method is an independent write or read.
type Repository interface {
	// Insert stores a new record and returns its store-assigned identifier.
	Insert(ctx context.Context, kind EntityKind, parentID string, fields Fields) (string, error)
	// Update replaces the fields of an existing record. Returns ErrNotFound if absent.
	Update(ctx context.Context, kind EntityKind, id string, fields Fields) error
	// DeleteWhere removes every record of kind under parentID together with
	// all of their descendants.
	DeleteWhere(ctx context.Context, kind EntityKind, parentID string) error
	// FindOne loads a single record.
	FindOne(ctx context.Context, kind EntityKind, id string) (Record, bool, error)
	// FindChildren lists records of kind under parentID in insertion order.
	FindChildren(ctx context.Context, kind EntityKind, parentID string) ([]Record, error)
}

// Client is a customer owning one or more sites.
type Client struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Site is a physical installation belonging to a client.
type Site struct {
	ID       string `json:"id" yaml:"id"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"address" yaml:"address,omitempty"`
}

// Technician is an assignable field technician.
type Technician struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Directory provides the read-only lookups used to populate selections.
type Directory interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListSites(ctx context.Context, clientID string) ([]Site, error)
	ListTechnicians(ctx context.Context) ([]Technician, error)
}
