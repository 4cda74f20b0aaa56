package report

import (
	"strconv"

	"gasreport/pkg/domain"
)

// The functions below are the only place where entities are flattened into
// store columns and back. Numeric-looking strings become float64 or nil on
// the way out and display strings on the way in.

func decimalField(s string) any {
	if v := ParseDecimal(s); v != nil {
		return *v
	}
	return nil
}

func interventionFields(in domain.Intervention) domain.Fields {
	return domain.Fields{
		"variant":       string(in.Variant),
		"date":          in.Date,
		"start_time":    in.StartTime,
		"end_time":      in.EndTime,
		"technician":    in.Technician,
		"types":         append([]string(nil), in.Types...),
		"client_id":     in.ClientID,
		"site_id":       in.SiteID,
		"contact_name":  in.Contact.Name,
		"contact_phone": in.Contact.Phone,
		"contact_email": in.Contact.Email,
		"observations":  in.Observations,
		"conclusion":    in.Conclusion,
	}
}

func unitFields(u domain.Unit) domain.Fields {
	return domain.Fields{
		"kind":          string(u.Kind),
		"make":          u.Make,
		"model":         u.Model,
		"serial_number": u.SerialNumber,
		"firmware":      u.Firmware,
		"location":      u.Location,
		"condition":     u.Condition,
	}
}

func backupPowerFields(bp domain.BackupPower) domain.Fields {
	return domain.Fields{
		"type":      bp.Type,
		"voltage":   decimalField(bp.Voltage),
		"capacity":  decimalField(bp.Capacity),
		"test_date": bp.TestDate,
		"status":    bp.Status,
	}
}

func unitObservationFields(u domain.Unit) domain.Fields {
	return domain.Fields{
		"work_done":       u.WorkDone,
		"anomalies":       u.Anomalies,
		"recommendations": u.Recommendations,
		"parts_replaced":  u.PartsReplaced,
	}
}

func putCalibration(f domain.Fields, zero domain.ZeroCalibration, sens domain.SensitivityCalibration) {
	f["zero_reference_gas"] = zero.ReferenceGas
	f["zero_before"] = decimalField(zero.Before)
	f["zero_after"] = decimalField(zero.After)
	f["zero_status"] = zero.Status
	f["sensitivity_test_gas"] = sens.TestGas
	f["sensitivity_gas_value"] = decimalField(sens.GasValue)
	f["sensitivity_before"] = decimalField(sens.Before)
	f["sensitivity_after"] = decimalField(sens.After)
	f["sensitivity_unit"] = sens.Unit
	f["sensitivity_coefficient"] = decimalField(sens.Coefficient)
	f["sensitivity_status"] = sens.Status
}

func gasDetectorFields(d domain.GasDetector) domain.Fields {
	f := domain.Fields{
		"make":             d.Make,
		"model":            d.Model,
		"serial_number":    d.SerialNumber,
		"location":         d.Location,
		"gas_type":         d.GasType,
		"connection":       d.Connection,
		"range":            d.Range,
		"operational":      d.Operational,
		"replaced":         d.Replaced,
		"last_replacement": d.LastReplacement,
		"next_replacement": d.NextReplacement,
	}
	putCalibration(f, d.Zero, d.Sensitivity)
	return f
}

func thresholdFields(t domain.AlarmThreshold) domain.Fields {
	return domain.Fields{
		"name":            t.Name,
		"value":           decimalField(t.Value),
		"unit":            t.Unit,
		"interlock":       t.Interlock,
		"interlock_state": string(t.InterlockState),
		"operational":     t.Operational,
		"supervised":      t.Supervised,
		"untested":        t.Untested,
	}
}

func flameDetectorFields(d domain.FlameDetector) domain.Fields {
	return domain.Fields{
		"make":            d.Make,
		"model":           d.Model,
		"serial_number":   d.SerialNumber,
		"location":        d.Location,
		"connection":      d.Connection,
		"test_distance":   decimalField(d.TestDistance),
		"response_time":   decimalField(d.ResponseTime),
		"test_status":     d.TestStatus,
		"interlock":       d.Interlock,
		"interlock_state": string(d.InterlockState),
		"operational":     d.Operational,
	}
}

func portableDetectorFields(p domain.PortableDetector) domain.Fields {
	return domain.Fields{
		"make":            p.Make,
		"model":           p.Model,
		"serial_number":   p.SerialNumber,
		"condition":       p.Condition,
		"audible_alarm":   p.AudibleAlarm,
		"visual_alarm":    p.VisualAlarm,
		"vibrating_alarm": p.VibratingAlarm,
		"parts_replaced":  p.PartsReplaced,
	}
}

func portableGasFields(g domain.PortableGas) domain.Fields {
	f := domain.Fields{
		"gas_type":            g.GasType,
		"range":               g.Range,
		"low_alarm":           decimalField(g.LowAlarm),
		"high_alarm":          decimalField(g.HighAlarm),
		"short_term_limit":    decimalField(g.ShortTermLimit),
		"time_weighted_limit": decimalField(g.TimeWeightedLimit),
		"over_range":          decimalField(g.OverRange),
	}
	putCalibration(f, g.Zero, g.Sensitivity)
	return f
}

func photoFields(p domain.Photo) domain.Fields {
	return domain.Fields{
		"category":     p.Category,
		"file_name":    p.FileName,
		"content_type": p.ContentType,
		"path":         p.Path,
	}
}

// --- decoding ---

func str(f domain.Fields, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func boolean(f domain.Fields, key string) bool {
	b, _ := f[key].(bool)
	return b
}

// decimal reads a number written by decimalField back as a display string.
func decimal(f domain.Fields, key string) string {
	switch v := f[key].(type) {
	case float64:
		return FormatDecimal(&v)
	case int64:
		x := float64(v)
		return FormatDecimal(&x)
	case string:
		return v
	default:
		return ""
	}
}

// coefficient reads a stored coefficient back at the precision it is
// computed with, so "1.020" reopens as "1.020".
func coefficient(f domain.Fields, key string) string {
	if v := ParseDecimal(decimal(f, key)); v != nil {
		return FormatCoefficient(v)
	}
	return ""
}

func stringList(f domain.Fields, key string) []string {
	switch v := f[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func decodeIntervention(r domain.Record) domain.Intervention {
	f := r.Fields
	return domain.Intervention{
		ID:         r.ID,
		Variant:    domain.Variant(str(f, "variant")),
		Date:       str(f, "date"),
		StartTime:  str(f, "start_time"),
		EndTime:    str(f, "end_time"),
		Technician: str(f, "technician"),
		Types:      stringList(f, "types"),
		ClientID:   str(f, "client_id"),
		SiteID:     str(f, "site_id"),
		Contact: domain.Contact{
			Name:  str(f, "contact_name"),
			Phone: str(f, "contact_phone"),
			Email: str(f, "contact_email"),
		},
		Observations: str(f, "observations"),
		Conclusion:   str(f, "conclusion"),
	}
}

func decodeUnit(r domain.Record) domain.Unit {
	f := r.Fields
	kind := domain.UnitKind(str(f, "kind"))
	if !kind.Valid() {
		kind = domain.UnitCentrale
	}
	return domain.Unit{
		ID:           r.ID,
		Kind:         kind,
		Make:         str(f, "make"),
		Model:        str(f, "model"),
		SerialNumber: str(f, "serial_number"),
		Firmware:     str(f, "firmware"),
		Location:     str(f, "location"),
		Condition:    str(f, "condition"),
	}
}

func decodeBackupPower(r domain.Record) *domain.BackupPower {
	f := r.Fields
	return &domain.BackupPower{
		ID:       r.ID,
		Type:     str(f, "type"),
		Voltage:  decimal(f, "voltage"),
		Capacity: decimal(f, "capacity"),
		TestDate: str(f, "test_date"),
		Status:   str(f, "status"),
	}
}

func applyUnitObservation(u *domain.Unit, r domain.Record) {
	f := r.Fields
	u.WorkDone = str(f, "work_done")
	u.Anomalies = str(f, "anomalies")
	u.Recommendations = str(f, "recommendations")
	u.PartsReplaced = str(f, "parts_replaced")
}

func decodeCalibration(f domain.Fields) (domain.ZeroCalibration, domain.SensitivityCalibration) {
	zero := domain.ZeroCalibration{
		ReferenceGas: str(f, "zero_reference_gas"),
		Before:       decimal(f, "zero_before"),
		After:        decimal(f, "zero_after"),
		Status:       str(f, "zero_status"),
	}
	sens := domain.SensitivityCalibration{
		TestGas:     str(f, "sensitivity_test_gas"),
		GasValue:    decimal(f, "sensitivity_gas_value"),
		Before:      decimal(f, "sensitivity_before"),
		After:       decimal(f, "sensitivity_after"),
		Unit:        str(f, "sensitivity_unit"),
		Coefficient: coefficient(f, "sensitivity_coefficient"),
		Status:      str(f, "sensitivity_status"),
	}
	return zero, sens
}

func decodeGasDetector(r domain.Record) domain.GasDetector {
	f := r.Fields
	zero, sens := decodeCalibration(f)
	return domain.GasDetector{
		ID:              r.ID,
		Make:            str(f, "make"),
		Model:           str(f, "model"),
		SerialNumber:    str(f, "serial_number"),
		Location:        str(f, "location"),
		GasType:         str(f, "gas_type"),
		Connection:      str(f, "connection"),
		Range:           str(f, "range"),
		Zero:            zero,
		Sensitivity:     sens,
		Operational:     boolean(f, "operational"),
		Replaced:        boolean(f, "replaced"),
		LastReplacement: str(f, "last_replacement"),
		NextReplacement: str(f, "next_replacement"),
	}
}

func decodeThreshold(r domain.Record) domain.AlarmThreshold {
	f := r.Fields
	return domain.AlarmThreshold{
		ID:             r.ID,
		Name:           str(f, "name"),
		Value:          decimal(f, "value"),
		Unit:           str(f, "unit"),
		Interlock:      str(f, "interlock"),
		InterlockState: domain.ParseInterlockState(str(f, "interlock_state")),
		Operational:    boolean(f, "operational"),
		Supervised:     boolean(f, "supervised"),
		Untested:       boolean(f, "untested"),
	}
}

func decodeFlameDetector(r domain.Record) domain.FlameDetector {
	f := r.Fields
	return domain.FlameDetector{
		ID:             r.ID,
		Make:           str(f, "make"),
		Model:          str(f, "model"),
		SerialNumber:   str(f, "serial_number"),
		Location:       str(f, "location"),
		Connection:     str(f, "connection"),
		TestDistance:   decimal(f, "test_distance"),
		ResponseTime:   decimal(f, "response_time"),
		TestStatus:     str(f, "test_status"),
		Interlock:      str(f, "interlock"),
		InterlockState: domain.ParseInterlockState(str(f, "interlock_state")),
		Operational:    boolean(f, "operational"),
	}
}

func decodePortableDetector(r domain.Record) domain.PortableDetector {
	f := r.Fields
	return domain.PortableDetector{
		ID:             r.ID,
		Make:           str(f, "make"),
		Model:          str(f, "model"),
		SerialNumber:   str(f, "serial_number"),
		Condition:      str(f, "condition"),
		AudibleAlarm:   boolean(f, "audible_alarm"),
		VisualAlarm:    boolean(f, "visual_alarm"),
		VibratingAlarm: boolean(f, "vibrating_alarm"),
		PartsReplaced:  str(f, "parts_replaced"),
	}
}

func decodePortableGas(r domain.Record) domain.PortableGas {
	f := r.Fields
	zero, sens := decodeCalibration(f)
	return domain.PortableGas{
		ID:                r.ID,
		GasType:           str(f, "gas_type"),
		Range:             str(f, "range"),
		Zero:              zero,
		Sensitivity:       sens,
		LowAlarm:          decimal(f, "low_alarm"),
		HighAlarm:         decimal(f, "high_alarm"),
		ShortTermLimit:    decimal(f, "short_term_limit"),
		TimeWeightedLimit: decimal(f, "time_weighted_limit"),
		OverRange:         decimal(f, "over_range"),
	}
}

func decodePhoto(r domain.Record) domain.Photo {
	f := r.Fields
	return domain.Photo{
		ID:          r.ID,
		Category:    str(f, "category"),
		FileName:    str(f, "file_name"),
		ContentType: str(f, "content_type"),
		Path:        str(f, "path"),
	}
}
