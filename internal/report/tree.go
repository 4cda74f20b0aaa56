package report

import (
	"gasreport/pkg/domain"
)

// Minimum sizes of the mandatory collections. Detectors, thresholds, gases
// and photos are optional and may be emptied.
const (
	minUnits             = 1
	minPortableDetectors = 1
)

// Tree is the owned in-memory state of one report. Every mutation goes
// through its methods; callers get copies back, never aliases.
type Tree struct {
	root  domain.Intervention
	alloc *Allocator
}

// NewTree returns an empty report of the given variant holding one default
// unit (fixed) or portable detector (portable).
func NewTree(variant domain.Variant, alloc *Allocator) *Tree {
	if alloc == nil {
		alloc = NewAllocator()
	}
	t := &Tree{
		root:  domain.Intervention{ID: alloc.Next(), Variant: variant},
		alloc: alloc,
	}
	switch variant {
	case domain.VariantPortable:
		t.root.PortableDetectors = []domain.PortableDetector{{ID: alloc.Next()}}
	default:
		t.root.Variant = domain.VariantFixed
		t.root.Units = []domain.Unit{{ID: alloc.Next(), Kind: domain.UnitCentrale}}
	}
	return t
}

// treeFromIntervention wraps an already populated intervention, as produced
// by hydration.
func treeFromIntervention(root domain.Intervention, alloc *Allocator) *Tree {
	if alloc == nil {
		alloc = NewAllocator()
	}
	return &Tree{root: cloneIntervention(root), alloc: alloc}
}

// Variant returns the report variant.
func (t *Tree) Variant() domain.Variant { return t.root.Variant }

// ID returns the current root identifier, local or store-assigned.
func (t *Tree) ID() string { return t.root.ID }

// Snapshot returns a deep copy of the whole report.
func (t *Tree) Snapshot() domain.Intervention { return cloneIntervention(t.root) }

// UpdateIntervention patches the root fields. The mutator cannot replace the
// root identity or its child collections.
func (t *Tree) UpdateIntervention(mutator func(*domain.Intervention) error) error {
	current := cloneIntervention(t.root)
	if err := mutator(&current); err != nil {
		return err
	}
	current.ID = t.root.ID
	current.Variant = t.root.Variant
	current.Units = t.root.Units
	current.PortableDetectors = t.root.PortableDetectors
	current.Photos = t.root.Photos
	current.Types = append([]string(nil), current.Types...)
	t.root = current
	return nil
}

// EquipmentCount returns the number of units or portable detectors.
func (t *Tree) EquipmentCount() int {
	if t.root.Variant == domain.VariantPortable {
		return len(t.root.PortableDetectors)
	}
	return len(t.root.Units)
}

// --- units ---

// Unit returns a copy of the unit at index.
func (t *Tree) Unit(index int) (domain.Unit, error) {
	if err := t.requireVariant(domain.VariantFixed); err != nil {
		return domain.Unit{}, err
	}
	if err := checkIndex("unit", index, len(t.root.Units)); err != nil {
		return domain.Unit{}, err
	}
	return cloneUnit(t.root.Units[index]), nil
}

// AddUnit appends a new unit of kind and returns its index.
func (t *Tree) AddUnit(kind domain.UnitKind) (int, error) {
	if err := t.requireVariant(domain.VariantFixed); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		kind = domain.UnitCentrale
	}
	t.root.Units = append(t.root.Units, domain.Unit{ID: t.alloc.Next(), Kind: kind})
	return len(t.root.Units) - 1, nil
}

// RemoveUnit deletes the unit at index. The last unit cannot be removed.
func (t *Tree) RemoveUnit(index int) error {
	if err := t.requireVariant(domain.VariantFixed); err != nil {
		return err
	}
	if err := checkIndex("unit", index, len(t.root.Units)); err != nil {
		return err
	}
	if len(t.root.Units) <= minUnits {
		return domain.MinimumCardinalityViolation{Collection: "unit", Min: minUnits}
	}
	t.root.Units = removeAt(t.root.Units, index)
	return nil
}

// UpdateUnit patches the unit at index. Identity, detectors and backup power
// are managed by their own operations and survive the mutator unchanged.
func (t *Tree) UpdateUnit(index int, mutator func(*domain.Unit) error) error {
	u, err := t.unitRef(index)
	if err != nil {
		return err
	}
	current := cloneUnit(*u)
	if err := mutator(&current); err != nil {
		return err
	}
	if !current.Kind.Valid() {
		current.Kind = u.Kind
	}
	current.ID = u.ID
	current.BackupPower = u.BackupPower
	current.GasDetectors = u.GasDetectors
	current.FlameDetectors = u.FlameDetectors
	*u = current
	return nil
}

// SetBackupPower attaches, replaces or (with nil) clears the backup power
// record of a unit.
func (t *Tree) SetBackupPower(unit int, bp *domain.BackupPower) error {
	u, err := t.unitRef(unit)
	if err != nil {
		return err
	}
	if bp == nil {
		u.BackupPower = nil
		return nil
	}
	cp := *bp
	switch {
	case u.BackupPower != nil:
		cp.ID = u.BackupPower.ID
	case cp.ID == "":
		cp.ID = t.alloc.Next()
	}
	u.BackupPower = &cp
	return nil
}

// --- gas detectors ---

// AddGasDetector appends an empty gas detector to a unit.
func (t *Tree) AddGasDetector(unit int) (int, error) {
	u, err := t.unitRef(unit)
	if err != nil {
		return 0, err
	}
	u.GasDetectors = append(u.GasDetectors, domain.GasDetector{ID: t.alloc.Next(), Operational: true})
	return len(u.GasDetectors) - 1, nil
}

// RemoveGasDetector deletes a gas detector together with its thresholds.
func (t *Tree) RemoveGasDetector(unit, detector int) error {
	u, err := t.unitRef(unit)
	if err != nil {
		return err
	}
	if err := checkIndex("gas detector", detector, len(u.GasDetectors)); err != nil {
		return err
	}
	u.GasDetectors = removeAt(u.GasDetectors, detector)
	return nil
}

// UpdateGasDetector patches a gas detector. Its thresholds are preserved.
func (t *Tree) UpdateGasDetector(unit, detector int, mutator func(*domain.GasDetector) error) error {
	d, err := t.gasRef(unit, detector)
	if err != nil {
		return err
	}
	current := cloneGasDetector(*d)
	if err := mutator(&current); err != nil {
		return err
	}
	current.ID = d.ID
	current.Thresholds = d.Thresholds
	*d = current
	return nil
}

// RecomputeCoefficient derives the sensitivity coefficient of a gas detector
// from its test gas value and the reading before adjustment.
func (t *Tree) RecomputeCoefficient(unit, detector int) error {
	d, err := t.gasRef(unit, detector)
	if err != nil {
		return err
	}
	s := &d.Sensitivity
	s.Coefficient = CalculateCoefficient(s.GasValue, s.Before, s.Coefficient)
	return nil
}

// --- thresholds ---

// AddThreshold appends an alarm threshold to a gas detector.
func (t *Tree) AddThreshold(unit, detector int) (int, error) {
	d, err := t.gasRef(unit, detector)
	if err != nil {
		return 0, err
	}
	d.Thresholds = append(d.Thresholds, domain.AlarmThreshold{ID: t.alloc.Next()})
	return len(d.Thresholds) - 1, nil
}

// RemoveThreshold deletes an alarm threshold. Thresholds are optional, so the
// list may become empty.
func (t *Tree) RemoveThreshold(unit, detector, threshold int) error {
	d, err := t.gasRef(unit, detector)
	if err != nil {
		return err
	}
	if err := checkIndex("threshold", threshold, len(d.Thresholds)); err != nil {
		return err
	}
	d.Thresholds = removeAt(d.Thresholds, threshold)
	return nil
}

// UpdateThreshold patches an alarm threshold.
func (t *Tree) UpdateThreshold(unit, detector, threshold int, mutator func(*domain.AlarmThreshold) error) error {
	d, err := t.gasRef(unit, detector)
	if err != nil {
		return err
	}
	if err := checkIndex("threshold", threshold, len(d.Thresholds)); err != nil {
		return err
	}
	current := d.Thresholds[threshold]
	if err := mutator(&current); err != nil {
		return err
	}
	if !current.InterlockState.Valid() {
		current.InterlockState = d.Thresholds[threshold].InterlockState
	}
	current.ID = d.Thresholds[threshold].ID
	d.Thresholds[threshold] = current
	return nil
}

// --- flame detectors ---

// AddFlameDetector appends an empty flame detector to a unit.
func (t *Tree) AddFlameDetector(unit int) (int, error) {
	u, err := t.unitRef(unit)
	if err != nil {
		return 0, err
	}
	u.FlameDetectors = append(u.FlameDetectors, domain.FlameDetector{ID: t.alloc.Next(), Operational: true})
	return len(u.FlameDetectors) - 1, nil
}

// RemoveFlameDetector deletes a flame detector.
func (t *Tree) RemoveFlameDetector(unit, detector int) error {
	u, err := t.unitRef(unit)
	if err != nil {
		return err
	}
	if err := checkIndex("flame detector", detector, len(u.FlameDetectors)); err != nil {
		return err
	}
	u.FlameDetectors = removeAt(u.FlameDetectors, detector)
	return nil
}

// UpdateFlameDetector patches a flame detector.
func (t *Tree) UpdateFlameDetector(unit, detector int, mutator func(*domain.FlameDetector) error) error {
	u, err := t.unitRef(unit)
	if err != nil {
		return err
	}
	if err := checkIndex("flame detector", detector, len(u.FlameDetectors)); err != nil {
		return err
	}
	current := u.FlameDetectors[detector]
	if err := mutator(&current); err != nil {
		return err
	}
	if !current.InterlockState.Valid() {
		current.InterlockState = u.FlameDetectors[detector].InterlockState
	}
	current.ID = u.FlameDetectors[detector].ID
	u.FlameDetectors[detector] = current
	return nil
}

// --- portable detectors ---

// PortableDetector returns a copy of the portable detector at index.
func (t *Tree) PortableDetector(index int) (domain.PortableDetector, error) {
	p, err := t.portableRef(index)
	if err != nil {
		return domain.PortableDetector{}, err
	}
	return clonePortable(*p), nil
}

// AddPortableDetector appends a new portable detector and returns its index.
func (t *Tree) AddPortableDetector() (int, error) {
	if err := t.requireVariant(domain.VariantPortable); err != nil {
		return 0, err
	}
	t.root.PortableDetectors = append(t.root.PortableDetectors, domain.PortableDetector{ID: t.alloc.Next()})
	return len(t.root.PortableDetectors) - 1, nil
}

// RemovePortableDetector deletes the portable detector at index. The last
// one cannot be removed.
func (t *Tree) RemovePortableDetector(index int) error {
	if _, err := t.portableRef(index); err != nil {
		return err
	}
	if len(t.root.PortableDetectors) <= minPortableDetectors {
		return domain.MinimumCardinalityViolation{Collection: "portable detector", Min: minPortableDetectors}
	}
	t.root.PortableDetectors = removeAt(t.root.PortableDetectors, index)
	return nil
}

// UpdatePortableDetector patches a portable detector. Its gases are preserved.
func (t *Tree) UpdatePortableDetector(index int, mutator func(*domain.PortableDetector) error) error {
	p, err := t.portableRef(index)
	if err != nil {
		return err
	}
	current := clonePortable(*p)
	if err := mutator(&current); err != nil {
		return err
	}
	current.ID = p.ID
	current.Gases = p.Gases
	*p = current
	return nil
}

// AddPortableGas appends a gas cell to a portable detector.
func (t *Tree) AddPortableGas(detector int) (int, error) {
	p, err := t.portableRef(detector)
	if err != nil {
		return 0, err
	}
	p.Gases = append(p.Gases, domain.PortableGas{ID: t.alloc.Next()})
	return len(p.Gases) - 1, nil
}

// RemovePortableGas deletes a gas cell.
func (t *Tree) RemovePortableGas(detector, gas int) error {
	p, err := t.portableRef(detector)
	if err != nil {
		return err
	}
	if err := checkIndex("portable gas", gas, len(p.Gases)); err != nil {
		return err
	}
	p.Gases = removeAt(p.Gases, gas)
	return nil
}

// UpdatePortableGas patches a gas cell.
func (t *Tree) UpdatePortableGas(detector, gas int, mutator func(*domain.PortableGas) error) error {
	g, err := t.portableGasRef(detector, gas)
	if err != nil {
		return err
	}
	current := *g
	if err := mutator(&current); err != nil {
		return err
	}
	current.ID = g.ID
	*g = current
	return nil
}

// RecomputePortableCoefficient derives the sensitivity coefficient of a gas cell.
func (t *Tree) RecomputePortableCoefficient(detector, gas int) error {
	g, err := t.portableGasRef(detector, gas)
	if err != nil {
		return err
	}
	s := &g.Sensitivity
	s.Coefficient = CalculateCoefficient(s.GasValue, s.Before, s.Coefficient)
	return nil
}

// --- photos ---

// AddPhoto attaches a photo and returns its index.
func (t *Tree) AddPhoto(photo domain.Photo) int {
	photo.ID = t.alloc.Next()
	if photo.Category == "" {
		photo.Category = domain.PhotoCategoryConclusion
	}
	photo.Data = append([]byte(nil), photo.Data...)
	t.root.Photos = append(t.root.Photos, photo)
	return len(t.root.Photos) - 1
}

// RemovePhoto detaches the photo at index.
func (t *Tree) RemovePhoto(index int) error {
	if err := checkIndex("photo", index, len(t.root.Photos)); err != nil {
		return err
	}
	t.root.Photos = removeAt(t.root.Photos, index)
	return nil
}

// --- identity ---

// Promote replaces the identifier of the entity currently known as oldID
// with the store-assigned newID. It reports whether an entity was found.
// Children address their parent through the nesting, so rewriting the
// entity's own ID updates every downstream reference at once.
func (t *Tree) Promote(oldID, newID string) bool {
	if oldID == "" || oldID == newID {
		return oldID != ""
	}
	if t.root.ID == oldID {
		t.root.ID = newID
		return true
	}
	for i := range t.root.Units {
		u := &t.root.Units[i]
		if promote(&u.ID, oldID, newID) {
			return true
		}
		if u.BackupPower != nil && promote(&u.BackupPower.ID, oldID, newID) {
			return true
		}
		for j := range u.GasDetectors {
			d := &u.GasDetectors[j]
			if promote(&d.ID, oldID, newID) {
				return true
			}
			for k := range d.Thresholds {
				if promote(&d.Thresholds[k].ID, oldID, newID) {
					return true
				}
			}
		}
		for j := range u.FlameDetectors {
			if promote(&u.FlameDetectors[j].ID, oldID, newID) {
				return true
			}
		}
	}
	for i := range t.root.PortableDetectors {
		p := &t.root.PortableDetectors[i]
		if promote(&p.ID, oldID, newID) {
			return true
		}
		for j := range p.Gases {
			if promote(&p.Gases[j].ID, oldID, newID) {
				return true
			}
		}
	}
	for i := range t.root.Photos {
		if promote(&t.root.Photos[i].ID, oldID, newID) {
			return true
		}
	}
	return false
}

// setPhotoPath records the uploaded blob key of a photo and drops its bytes.
func (t *Tree) setPhotoPath(id, path string) {
	for i := range t.root.Photos {
		if t.root.Photos[i].ID == id {
			t.root.Photos[i].Path = path
			t.root.Photos[i].Data = nil
			return
		}
	}
}

func promote(field *string, oldID, newID string) bool {
	if *field != oldID {
		return false
	}
	*field = newID
	return true
}

// --- addressing helpers ---

func (t *Tree) requireVariant(v domain.Variant) error {
	if t.root.Variant != v {
		return domain.ErrVariantMismatch
	}
	return nil
}

func (t *Tree) unitRef(index int) (*domain.Unit, error) {
	if err := t.requireVariant(domain.VariantFixed); err != nil {
		return nil, err
	}
	if err := checkIndex("unit", index, len(t.root.Units)); err != nil {
		return nil, err
	}
	return &t.root.Units[index], nil
}

func (t *Tree) gasRef(unit, detector int) (*domain.GasDetector, error) {
	u, err := t.unitRef(unit)
	if err != nil {
		return nil, err
	}
	if err := checkIndex("gas detector", detector, len(u.GasDetectors)); err != nil {
		return nil, err
	}
	return &u.GasDetectors[detector], nil
}

func (t *Tree) portableRef(index int) (*domain.PortableDetector, error) {
	if err := t.requireVariant(domain.VariantPortable); err != nil {
		return nil, err
	}
	if err := checkIndex("portable detector", index, len(t.root.PortableDetectors)); err != nil {
		return nil, err
	}
	return &t.root.PortableDetectors[index], nil
}

func (t *Tree) portableGasRef(detector, gas int) (*domain.PortableGas, error) {
	p, err := t.portableRef(detector)
	if err != nil {
		return nil, err
	}
	if err := checkIndex("portable gas", gas, len(p.Gases)); err != nil {
		return nil, err
	}
	return &p.Gases[gas], nil
}

func checkIndex(collection string, index, length int) error {
	if index < 0 || index >= length {
		return domain.IndexError{Collection: collection, Index: index, Len: length}
	}
	return nil
}

// removeAt returns a fresh slice without element i so that copies handed out
// earlier never observe the shift.
func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// --- cloning ---

func cloneIntervention(in domain.Intervention) domain.Intervention {
	cp := in
	cp.Types = append([]string(nil), in.Types...)
	if in.Units != nil {
		cp.Units = make([]domain.Unit, len(in.Units))
		for i, u := range in.Units {
			cp.Units[i] = cloneUnit(u)
		}
	}
	if in.PortableDetectors != nil {
		cp.PortableDetectors = make([]domain.PortableDetector, len(in.PortableDetectors))
		for i, p := range in.PortableDetectors {
			cp.PortableDetectors[i] = clonePortable(p)
		}
	}
	if in.Photos != nil {
		cp.Photos = make([]domain.Photo, len(in.Photos))
		for i, p := range in.Photos {
			p.Data = append([]byte(nil), p.Data...)
			cp.Photos[i] = p
		}
	}
	return cp
}

func cloneUnit(u domain.Unit) domain.Unit {
	cp := u
	if u.BackupPower != nil {
		bp := *u.BackupPower
		cp.BackupPower = &bp
	}
	if u.GasDetectors != nil {
		cp.GasDetectors = make([]domain.GasDetector, len(u.GasDetectors))
		for i, d := range u.GasDetectors {
			cp.GasDetectors[i] = cloneGasDetector(d)
		}
	}
	cp.FlameDetectors = append([]domain.FlameDetector(nil), u.FlameDetectors...)
	return cp
}

func cloneGasDetector(d domain.GasDetector) domain.GasDetector {
	cp := d
	cp.Thresholds = append([]domain.AlarmThreshold(nil), d.Thresholds...)
	return cp
}

func clonePortable(p domain.PortableDetector) domain.PortableDetector {
	cp := p
	cp.Gases = append([]domain.PortableGas(nil), p.Gases...)
	return cp
}
