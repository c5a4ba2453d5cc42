package data

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// EncodeStrings stores a string list as a JSON column. Nil and empty lists
// are stored as an empty JSON array.
func EncodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	bs, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(bs)
}

// EncodeJSON stores any value as a JSON column, or NULL if it can't be
// encoded.
func EncodeJSON(v any) datatypes.JSON {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(bs)
}

func decodeStrings(j datatypes.JSON) []string {
	if len(j) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(j, &values); err != nil {
		return nil
	}
	return values
}
