package service

// Actor identifies the authenticated caller of a mutation for ownership checks and audit.
type Actor struct {
	Email     string
	IPAddress string
	UserAgent string
}

func (a Actor) event(action, resource, resourceID string, detail map[string]interface{}) AuditEvent {
	return AuditEvent{
		ActorEmail: a.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
		IPAddress:  a.IPAddress,
		UserAgent:  a.UserAgent,
	}
}
