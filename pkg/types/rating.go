package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Rating holds the aggregate review score persisted as JSONB on a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Value marshals the rating into JSON for Postgres.
func (r Rating) Value() (driver.Value, error) {
	buf, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the rating.
func (r *Rating) Scan(value interface{}) error {
	if value == nil {
		*r = Rating{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("rating: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, r)
}
