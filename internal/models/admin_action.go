package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Action kinds
const (
	AdminActionCreate = "create"
	AdminActionUpdate = "update"
	AdminActionDelete = "delete"
)

// Resource kinds
const (
	AdminResourceUser  = "user"
	AdminResourceOffer = "offer"
)

// AdminAction is an immutable audit entry for an administrative mutation.
type AdminAction struct {
	ID           string
	AdminUserID  string
	ActionType   string
	ResourceType string
	ResourceID   string
	Details      ActionDetails
	CreatedAt    time.Time
}

// ActionDetails holds the free-form context payload for an audit entry
type ActionDetails map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (d *ActionDetails) Scan(value interface{}) error {
	if value == nil {
		*d = make(ActionDetails)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*d = ActionDetails(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (d ActionDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
