package report

import (
	"fmt"
	"strings"

	"gasreport/pkg/domain"
)

// WriteOp enumerates the steps of a write plan.
type WriteOp string

// Plan steps.
const (
	OpInsert WriteOp = "insert"
	OpUpdate WriteOp = "update"
	// OpReplaceChildren deletes every persisted child of kind under the
	// parent (with their descendants) before the new subtree is inserted.
	OpReplaceChildren WriteOp = "replace_children"
	// OpUploadPhoto uploads the photo bytes, then inserts the photo row.
	OpUploadPhoto WriteOp = "upload_photo"
)

// Write is one step of a plan. Ref and ParentRef are tree identifiers as they
// were when the plan was built; the reconciler resolves ParentRef to the
// store identifier produced by the parent's own step.
type Write struct {
	Op        WriteOp
	Kind      domain.EntityKind
	Ref       string
	ParentRef string
	Fields    domain.Fields
	Photo     *domain.Photo
}

// Plan is the ordered write sequence of one save. Parents always precede
// their children.
type Plan struct {
	Mode    domain.SaveMode
	RootRef string
	Writes  []Write
}

// BuildPlan flattens tree into the write sequence for mode.
func BuildPlan(tree *Tree, mode domain.SaveMode) (Plan, error) {
	root := tree.root
	plan := Plan{Mode: mode, RootRef: root.ID}
	switch mode {
	case domain.SaveCreateNew, domain.SaveDuplicateAsNew:
		plan.add(Write{Op: OpInsert, Kind: domain.KindIntervention, Ref: root.ID, Fields: interventionFields(root)})
	case domain.SaveUpdateInPlace:
		if IsLocalID(root.ID) {
			return Plan{}, domain.ErrNotPersisted
		}
		plan.add(Write{Op: OpUpdate, Kind: domain.KindIntervention, Ref: root.ID, Fields: interventionFields(root)})
	default:
		return Plan{}, fmt.Errorf("unknown save mode %q", mode)
	}

	switch root.Variant {
	case domain.VariantPortable:
		plan.replaceChildren(root.ID, domain.KindPortableDetector)
		for _, p := range root.PortableDetectors {
			plan.portableDetector(root.ID, p)
		}
	default:
		plan.replaceChildren(root.ID, domain.KindUnit)
		for _, u := range root.Units {
			plan.unit(root.ID, u)
		}
	}

	plan.replaceChildren(root.ID, domain.KindPhoto)
	for _, p := range root.Photos {
		plan.photo(root.ID, p)
	}
	return plan, nil
}

func (p *Plan) add(w Write) { p.Writes = append(p.Writes, w) }

// replaceChildren is the single point where a save gives up on diffing:
// on update every persisted child of kind is dropped and rewritten from the
// tree. New roots have no children, so nothing is emitted for them.
func (p *Plan) replaceChildren(parent string, kind domain.EntityKind) {
	if p.Mode != domain.SaveUpdateInPlace {
		return
	}
	p.add(Write{Op: OpReplaceChildren, Kind: kind, ParentRef: parent})
}

func (p *Plan) unit(parent string, u domain.Unit) {
	p.add(Write{Op: OpInsert, Kind: domain.KindUnit, Ref: u.ID, ParentRef: parent, Fields: unitFields(u)})
	if u.BackupPower != nil {
		p.add(Write{Op: OpInsert, Kind: domain.KindBackupPower, Ref: u.BackupPower.ID, ParentRef: u.ID, Fields: backupPowerFields(*u.BackupPower)})
	}
	if u.HasObservations() {
		p.add(Write{Op: OpInsert, Kind: domain.KindUnitObservation, ParentRef: u.ID, Fields: unitObservationFields(u)})
	}
	for _, d := range u.GasDetectors {
		if unfilledGasDetector(d) {
			continue
		}
		p.add(Write{Op: OpInsert, Kind: domain.KindGasDetector, Ref: d.ID, ParentRef: u.ID, Fields: gasDetectorFields(d)})
		for _, t := range d.Thresholds {
			p.add(Write{Op: OpInsert, Kind: domain.KindAlarmThreshold, Ref: t.ID, ParentRef: d.ID, Fields: thresholdFields(t)})
		}
	}
	for _, d := range u.FlameDetectors {
		if unfilledFlameDetector(d) {
			continue
		}
		p.add(Write{Op: OpInsert, Kind: domain.KindFlameDetector, Ref: d.ID, ParentRef: u.ID, Fields: flameDetectorFields(d)})
	}
}

func (p *Plan) portableDetector(parent string, d domain.PortableDetector) {
	p.add(Write{Op: OpInsert, Kind: domain.KindPortableDetector, Ref: d.ID, ParentRef: parent, Fields: portableDetectorFields(d)})
	for _, g := range d.Gases {
		p.add(Write{Op: OpInsert, Kind: domain.KindPortableGas, Ref: g.ID, ParentRef: d.ID, Fields: portableGasFields(g)})
	}
}

func (p *Plan) photo(parent string, ph domain.Photo) {
	switch {
	case len(ph.Data) > 0:
		cp := ph
		p.add(Write{Op: OpUploadPhoto, Kind: domain.KindPhoto, Ref: ph.ID, ParentRef: parent, Photo: &cp})
	case ph.Path != "":
		p.add(Write{Op: OpInsert, Kind: domain.KindPhoto, Ref: ph.ID, ParentRef: parent, Fields: photoFields(ph)})
	}
}

// unfilledGasDetector reports whether a gas detector was added and never
// filled in: nothing identifies it and nothing was measured on it.
func unfilledGasDetector(d domain.GasDetector) bool {
	return len(d.Thresholds) == 0 && blank(d.Make, d.Model, d.SerialNumber, d.GasType)
}

// unfilledFlameDetector reports whether a flame detector was added and never
// filled in.
func unfilledFlameDetector(d domain.FlameDetector) bool {
	return blank(d.Make, d.Model, d.SerialNumber, d.TestDistance, d.ResponseTime)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
