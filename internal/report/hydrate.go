package report

import (
	"context"

	"gasreport/pkg/domain"
)

// loader reads one persisted report back into a tree. Reads are sequential
// because each level needs the identifiers of the previous one.
type loader struct {
	repo domain.Repository
}

// Load hydrates the intervention id of the given variant. Any failure,
// including a missing root or a root of the other variant, comes back as a
// RepositoryReadFailure.
func Load(ctx context.Context, repo domain.Repository, variant domain.Variant, id string, alloc *Allocator) (*Tree, error) {
	l := loader{repo: repo}
	rec, ok, err := repo.FindOne(ctx, domain.KindIntervention, id)
	if err != nil {
		return nil, domain.RepositoryReadFailure{Kind: domain.KindIntervention, ID: id, Cause: err}
	}
	if !ok {
		return nil, domain.RepositoryReadFailure{Kind: domain.KindIntervention, ID: id, Cause: domain.ErrNotFound{Kind: domain.KindIntervention, ID: id}}
	}
	root := decodeIntervention(rec)
	if root.Variant == "" {
		root.Variant = domain.VariantFixed
	}
	if root.Variant != variant {
		return nil, domain.RepositoryReadFailure{Kind: domain.KindIntervention, ID: id, Cause: domain.ErrVariantMismatch}
	}

	switch variant {
	case domain.VariantPortable:
		root.PortableDetectors, err = l.portableDetectors(ctx, id)
	default:
		root.Units, err = l.units(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if root.Photos, err = l.photos(ctx, id); err != nil {
		return nil, err
	}

	tree := treeFromIntervention(root, alloc)
	// A persisted report always reopens with its mandatory collection
	// populated.
	switch variant {
	case domain.VariantPortable:
		if len(tree.root.PortableDetectors) == 0 {
			_, _ = tree.AddPortableDetector()
		}
	default:
		if len(tree.root.Units) == 0 {
			_, _ = tree.AddUnit(domain.UnitCentrale)
		}
	}
	return tree, nil
}

func (l loader) children(ctx context.Context, kind domain.EntityKind, parent string) ([]domain.Record, error) {
	recs, err := l.repo.FindChildren(ctx, kind, parent)
	if err != nil {
		return nil, domain.RepositoryReadFailure{Kind: kind, ID: parent, Cause: err}
	}
	return recs, nil
}

func (l loader) units(ctx context.Context, root string) ([]domain.Unit, error) {
	recs, err := l.children(ctx, domain.KindUnit, root)
	if err != nil {
		return nil, err
	}
	units := make([]domain.Unit, 0, len(recs))
	for _, rec := range recs {
		u := decodeUnit(rec)
		power, err := l.children(ctx, domain.KindBackupPower, u.ID)
		if err != nil {
			return nil, err
		}
		if len(power) > 0 {
			u.BackupPower = decodeBackupPower(power[0])
		}
		obs, err := l.children(ctx, domain.KindUnitObservation, u.ID)
		if err != nil {
			return nil, err
		}
		if len(obs) > 0 {
			applyUnitObservation(&u, obs[0])
		}
		if u.GasDetectors, err = l.gasDetectors(ctx, u.ID); err != nil {
			return nil, err
		}
		flames, err := l.children(ctx, domain.KindFlameDetector, u.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range flames {
			u.FlameDetectors = append(u.FlameDetectors, decodeFlameDetector(f))
		}
		units = append(units, u)
	}
	return units, nil
}

func (l loader) gasDetectors(ctx context.Context, unit string) ([]domain.GasDetector, error) {
	recs, err := l.children(ctx, domain.KindGasDetector, unit)
	if err != nil {
		return nil, err
	}
	var out []domain.GasDetector
	for _, rec := range recs {
		d := decodeGasDetector(rec)
		thresholds, err := l.children(ctx, domain.KindAlarmThreshold, d.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range thresholds {
			d.Thresholds = append(d.Thresholds, decodeThreshold(t))
		}
		out = append(out, d)
	}
	return out, nil
}

func (l loader) portableDetectors(ctx context.Context, root string) ([]domain.PortableDetector, error) {
	recs, err := l.children(ctx, domain.KindPortableDetector, root)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PortableDetector, 0, len(recs))
	for _, rec := range recs {
		p := decodePortableDetector(rec)
		gases, err := l.children(ctx, domain.KindPortableGas, p.ID)
		if err != nil {
			return nil, err
		}
		for _, g := range gases {
			p.Gases = append(p.Gases, decodePortableGas(g))
		}
		out = append(out, p)
	}
	return out, nil
}

func (l loader) photos(ctx context.Context, root string) ([]domain.Photo, error) {
	recs, err := l.children(ctx, domain.KindPhoto, root)
	if err != nil {
		return nil, err
	}
	var out []domain.Photo
	for _, rec := range recs {
		out = append(out, decodePhoto(rec))
	}
	return out, nil
}
