package extract

import "invosplit/internal/schema"

// CanonicalizeKeys rewrites field-name variants a tier may emit onto the
// canonical schema keys. A variant is applied only when its canonical key
// is absent from the tier output; canonical values are never overwritten
// by aliases.
func CanonicalizeKeys(fields map[string]schema.ExtractedField) map[string]schema.ExtractedField {
	out := make(map[string]schema.ExtractedField, len(fields))
	for name, f := range fields {
		if _, canonical := schema.FieldByName(name); canonical {
			out[name] = f
		}
	}
	for name, f := range fields {
		if _, canonical := schema.FieldByName(name); canonical {
			continue
		}
		target, ok := schema.Aliases[name]
		if !ok {
			continue
		}
		if _, taken := out[target]; taken {
			continue
		}
		f.Name = target
		out[target] = f
	}
	return out
}

// mergeTier applies one tier's output onto the record. A field is taken
// only when no earlier tier has sourced it and the tier's value is
// non-empty: the first tier to answer wins. Presence is judged on the
// raw extracted value, since numeric slots stay zero until the record
// normalizer parses locale-formatted strings.
func mergeTier(rec *schema.InvoiceRecord, fields map[string]schema.ExtractedField) {
	for name, f := range CanonicalizeKeys(fields) {
		if schema.IsEmpty(f.Value) {
			continue
		}
		if rec.Sourced(name) {
			continue
		}
		rec.Set(name, f)
	}
}

// missingFields returns the canonical names not yet sourced, in table
// order.
func missingFields(rec *schema.InvoiceRecord) []string {
	var missing []string
	for _, spec := range schema.Fields {
		if !rec.Sourced(spec.Name) {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}
