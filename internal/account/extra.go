package account

import "encoding/json"

// ExtraDict returns the extension-data map backing the account's
// serialized extra_data field. The payload is parsed lazily on first
// access; a malformed or absent payload yields an empty map, never an
// error. Values follow the JSON union (string, number, bool, nil,
// nested map/list).
func (a *Account) ExtraDict() map[string]interface{} {
	if a.extra == nil {
		m := map[string]interface{}{}
		if a.ExtraData != "" {
			if err := json.Unmarshal([]byte(a.ExtraData), &m); err != nil || m == nil {
				m = map[string]interface{}{}
			}
		}
		a.extra = m
	}
	return a.extra
}

// GetExtra returns the value stored under key, or def when unset.
func (a *Account) GetExtra(key string, def interface{}) interface{} {
	if v, ok := a.ExtraDict()[key]; ok {
		return v
	}
	return def
}

// SetExtra stores value under key and reserializes the payload into
// ExtraData. Persistence is the caller's concern (Service.SaveExtra).
func (a *Account) SetExtra(key string, value interface{}) error {
	m := a.ExtraDict()
	m[key] = value

	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}

	a.ExtraData = string(raw)
	return nil
}
