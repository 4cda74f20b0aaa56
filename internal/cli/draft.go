package cli

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gasreport/internal/report"
	"gasreport/pkg/domain"
)

// Draft is the YAML document a report is edited from. It has the shape of
// the `show` output, plus local files to attach as photos.
type Draft struct {
	domain.Intervention `yaml:",inline"`
	Attach              []Attachment `yaml:"attach,omitempty"`
}

// Attachment names a local image to upload with the report.
type Attachment struct {
	File        string `yaml:"file"`
	Category    string `yaml:"category,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
}

// readDraft decodes path on top of base, so keys missing from the file keep
// the values of base. Attachment paths are resolved against the draft's
// directory.
func readDraft(path string, base domain.Intervention) (Draft, error) {
	d := Draft{Intervention: base}
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied draft
	if err != nil {
		return Draft{}, fmt.Errorf("read draft: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("parse draft %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, a := range d.Attach {
		if a.File != "" && !filepath.IsAbs(a.File) {
			d.Attach[i].File = filepath.Join(dir, a.File)
		}
	}
	return d, nil
}

// applyDraft walks the session wizard from the info step to the conclusion,
// filling each step from d. Every step is validated on the way; the first
// refusal is returned with the wizard left on the failing step. Attachments
// are read once the conclusion step is reached.
func applyDraft(s *report.Session, d Draft) error {
	w := s.Wizard()
	tree := s.Tree()
	if w.Step() != domain.StepInfo {
		return fmt.Errorf("draft must start on the info step, wizard is on %s", w.Step())
	}

	err := tree.UpdateIntervention(func(in *domain.Intervention) error {
		in.Date = d.Date
		in.StartTime = d.StartTime
		in.EndTime = d.EndTime
		in.Technician = d.Technician
		in.Types = d.Types
		in.Contact = d.Contact
		in.Observations = d.Observations
		in.Conclusion = d.Conclusion
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	if err := w.SelectClient(d.ClientID); err != nil {
		return err
	}
	if err := w.SelectSite(d.SiteID); err != nil {
		return err
	}
	if err := fillEquipment(w, d.Intervention); err != nil {
		return err
	}
	// client step, then one Next per equipment item.
	for steps := 0; w.Step() != domain.StepConclusion; steps++ {
		if steps > tree.EquipmentCount()+1 {
			return errors.New("wizard did not reach the conclusion step")
		}
		if err := w.Next(); err != nil {
			return err
		}
	}
	return fillPhotos(tree, d)
}

// fillEquipment resizes the equipment collection to the draft and rewrites
// every item. A draft without equipment keeps the tree's.
func fillEquipment(w *report.Wizard, d domain.Intervention) error {
	tree := w.Tree()
	want := len(d.Units)
	if tree.Variant() == domain.VariantPortable {
		want = len(d.PortableDetectors)
	}
	if want == 0 {
		return nil
	}
	for tree.EquipmentCount() < want {
		if _, err := w.AddEquipment(); err != nil {
			return err
		}
	}
	for tree.EquipmentCount() > want {
		if err := w.RemoveEquipment(tree.EquipmentCount() - 1); err != nil {
			return err
		}
	}
	if tree.Variant() == domain.VariantPortable {
		for i, p := range d.PortableDetectors {
			if err := fillPortable(tree, i, p); err != nil {
				return err
			}
		}
		return nil
	}
	for i, u := range d.Units {
		if err := fillUnit(tree, i, u); err != nil {
			return err
		}
	}
	return nil
}

func fillUnit(tree *report.Tree, i int, src domain.Unit) error {
	if err := tree.UpdateUnit(i, func(u *domain.Unit) error { *u = src; return nil }); err != nil {
		return err
	}
	if err := tree.SetBackupPower(i, src.BackupPower); err != nil {
		return err
	}
	current, err := tree.Unit(i)
	if err != nil {
		return err
	}
	for j := len(current.GasDetectors) - 1; j >= 0; j-- {
		if err := tree.RemoveGasDetector(i, j); err != nil {
			return err
		}
	}
	for j := len(current.FlameDetectors) - 1; j >= 0; j-- {
		if err := tree.RemoveFlameDetector(i, j); err != nil {
			return err
		}
	}
	for _, gd := range src.GasDetectors {
		j, err := tree.AddGasDetector(i)
		if err != nil {
			return err
		}
		if err := tree.UpdateGasDetector(i, j, func(g *domain.GasDetector) error { *g = gd; return nil }); err != nil {
			return err
		}
		for _, th := range gd.Thresholds {
			k, err := tree.AddThreshold(i, j)
			if err != nil {
				return err
			}
			if err := tree.UpdateThreshold(i, j, k, func(t *domain.AlarmThreshold) error { *t = th; return nil }); err != nil {
				return err
			}
		}
		if err := tree.RecomputeCoefficient(i, j); err != nil {
			return err
		}
	}
	for _, fd := range src.FlameDetectors {
		j, err := tree.AddFlameDetector(i)
		if err != nil {
			return err
		}
		if err := tree.UpdateFlameDetector(i, j, func(f *domain.FlameDetector) error { *f = fd; return nil }); err != nil {
			return err
		}
	}
	return nil
}

func fillPortable(tree *report.Tree, i int, src domain.PortableDetector) error {
	if err := tree.UpdatePortableDetector(i, func(p *domain.PortableDetector) error { *p = src; return nil }); err != nil {
		return err
	}
	current, err := tree.PortableDetector(i)
	if err != nil {
		return err
	}
	for j := len(current.Gases) - 1; j >= 0; j-- {
		if err := tree.RemovePortableGas(i, j); err != nil {
			return err
		}
	}
	for _, gas := range src.Gases {
		j, err := tree.AddPortableGas(i)
		if err != nil {
			return err
		}
		if err := tree.UpdatePortableGas(i, j, func(g *domain.PortableGas) error { *g = gas; return nil }); err != nil {
			return err
		}
		if err := tree.RecomputePortableCoefficient(i, j); err != nil {
			return err
		}
	}
	return nil
}

// fillPhotos replaces the tree's photos with the stored ones listed in the
// draft, then attaches the local files.
func fillPhotos(tree *report.Tree, d Draft) error {
	for i := len(tree.Snapshot().Photos) - 1; i >= 0; i-- {
		if err := tree.RemovePhoto(i); err != nil {
			return err
		}
	}
	for _, ph := range d.Photos {
		if ph.Path == "" {
			continue
		}
		tree.AddPhoto(ph)
	}
	for _, a := range d.Attach {
		data, err := os.ReadFile(a.File) // #nosec G304 -- operator supplied attachment
		if err != nil {
			return fmt.Errorf("read attachment: %w", err)
		}
		ct := a.ContentType
		if ct == "" {
			ct = mime.TypeByExtension(filepath.Ext(a.File))
		}
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		tree.AddPhoto(domain.Photo{
			Category:    a.Category,
			FileName:    filepath.Base(a.File),
			ContentType: ct,
			Data:        data,
		})
	}
	return nil
}
