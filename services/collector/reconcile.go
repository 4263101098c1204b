package collector

import (
	"poloscraper/lib/scrapers/polo"
)

// Merge folds the page results into one field map. Sources are given in
// precedence order: once a field has a value, later pages never
// override it.
func Merge(sources ...polo.FieldMap) polo.FieldMap {
	merged := polo.FieldMap{}
	for _, source := range sources {
		for field, value := range source {
			merged.SetIfAbsent(field, value)
		}
	}
	return merged
}

// finalization defaults for fields the portal leaves blank on most
// records
var finalizeDefaults = map[polo.Field]string{
	polo.FieldEnrollmentStatus:   "Ativo",
	polo.FieldReenrolled:         "Não",
	polo.FieldExtensionHours:     "0",
	polo.FieldComplementaryHours: "0",
}

// Finalize closes out a merged record: the confirmed enrollment date
// fills a missing enrollment date (never the other way around), the
// defaults land on still-empty fields, and the identifier and
// processing method are stamped in.
func Finalize(fields polo.FieldMap, cpf, method string) polo.FieldMap {
	fields.SetIfAbsent(polo.FieldEnrollmentDate, fields.Get(polo.FieldConfirmedEnrollmentDate))
	for field, value := range finalizeDefaults {
		fields.SetIfAbsent(field, value)
	}
	fields[polo.FieldCPF] = cpf
	fields[polo.FieldProcessingMethod] = method
	return fields
}
