package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CollectionKind tells which shape a customer collection arrived in.
type CollectionKind int

const (
	// KindEmpty is an empty or null collection.
	KindEmpty CollectionKind = iota
	// KindIDs is a list of bare integer customer IDs that need profile lookups.
	KindIDs
	// KindRecords is a list of customer objects.
	KindRecords
)

func (k CollectionKind) String() string {
	switch k {
	case KindIDs:
		return "ids"
	case KindRecords:
		return "records"
	default:
		return "empty"
	}
}

// CustomerCollection is the decoded form of a customers payload.
// Exactly one of IDs or Records is populated, according to Kind.
type CustomerCollection struct {
	Kind    CollectionKind
	IDs     []int
	Records []json.RawMessage
}

// Len returns the number of entries in the collection.
func (c CustomerCollection) Len() int {
	if c.Kind == KindIDs {
		return len(c.IDs)
	}
	return len(c.Records)
}

// DecodeCustomerCollection resolves the collection shape once, from its first element.
// In an ID collection, entries that are not integers are skipped.
func DecodeCustomerCollection(raw json.RawMessage) (CustomerCollection, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return CustomerCollection{Kind: KindEmpty}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return CustomerCollection{}, fmt.Errorf("customer collection is not a list: %w", err)
	}
	if len(items) == 0 {
		return CustomerCollection{Kind: KindEmpty}, nil
	}

	var first int
	if err := json.Unmarshal(items[0], &first); err != nil {
		return CustomerCollection{Kind: KindRecords, Records: items}, nil
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		var id int
		if err := json.Unmarshal(item, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return CustomerCollection{Kind: KindIDs, IDs: ids}, nil
}
