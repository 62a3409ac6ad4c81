package model

import "time"

// ISOLayout matches JavaScript's Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ISOTime formats t in UTC with millisecond precision, nil for nil.
func ISOTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(ISOLayout)
	return &s
}

// ISOTimeValue is ISOTime for non-pointer times; the zero time maps to nil.
func ISOTimeValue(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	return ISOTime(&t)
}

// Actor identifies who requested a mutation.
type Actor struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuditContext is the optional caller context attached to every mutation.
type AuditContext struct {
	Actor  *Actor
	Source string
}

// Label is the human-readable actor recorded as initiatedBy.
func (ac AuditContext) Label() *string {
	if ac.Actor == nil {
		return nil
	}
	for _, v := range []string{ac.Actor.Email, ac.Actor.Name, ac.Actor.ID} {
		if v != "" {
			return &v
		}
	}
	return nil
}

// Audit builds the audit object stamped into metadata.
func (ac AuditContext) Audit(now time.Time) map[string]any {
	audit := map[string]any{
		"actor":      nil,
		"actorId":    nil,
		"actorRole":  nil,
		"source":     nil,
		"capturedAt": now.UTC().Format(ISOLayout),
	}
	if label := ac.Label(); label != nil {
		audit["actor"] = *label
	}
	if ac.Actor != nil {
		if ac.Actor.ID != "" {
			audit["actorId"] = ac.Actor.ID
		}
		if ac.Actor.Role != "" {
			audit["actorRole"] = ac.Actor.Role
		}
	}
	if ac.Source != "" {
		audit["source"] = ac.Source
	}
	return audit
}

// StampAudit merges patch over existing and records the audit object. The
// inputs are not modified; keys absent from patch survive.
func StampAudit(existing, patch map[string]any, ac AuditContext, now time.Time) map[string]any {
	out := make(map[string]any, len(existing)+len(patch)+1)
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	out["audit"] = ac.Audit(now)
	return out
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
