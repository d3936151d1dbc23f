package wire

import (
	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
)

// Map fields travel as repeated key=1/value=2 entry messages. Entries keep
// their first-seen order; a later entry with the same key replaces the value
// in place, matching protobuf map semantics.

// mergeMapEntry adds a decoded entry to a map field of rec
func mergeMapEntry(rec *record.Record, field *schema.Field, entry *record.Record) error {
	entries := rec.GetField(field).([]any)
	key := MapEntryKey(entry)
	for i, existing := range entries {
		if MapEntryKey(existing.(*record.Record)) == key {
			entries[i] = entry
			return nil
		}
	}
	return rec.AppendField(field, entry)
}

// MapEntryKey returns the key of a map entry record: a string, bool, int32,
// int64 or uint64 depending on the entry's key kind.
func MapEntryKey(entry *record.Record) any {
	keyField := entry.Descriptor().FieldByNumber(1)
	return entry.GetField(keyField)
}

// MapEntryValue returns the value of a map entry record.
func MapEntryValue(entry *record.Record) any {
	valueField := entry.Descriptor().FieldByNumber(2)
	return entry.GetField(valueField)
}

// NewMapEntry builds an entry record for a map field.
func NewMapEntry(field *schema.Field, key, value any) (*record.Record, error) {
	desc := field.Message()
	entry := record.New(desc)
	if err := entry.SetField(desc.FieldByNumber(1), key); err != nil {
		return nil, err
	}
	if err := entry.SetField(desc.FieldByNumber(2), value); err != nil {
		return nil, err
	}
	return entry, nil
}
