package middleware

import (
	"net/http"
	"strings"

	"github.com/edvin/drtrack/internal/model"
)

// DefaultSource is recorded when a request names no source channel.
const DefaultSource = "api"

var sourceHeaders = []string{"X-Request-Source", "X-Channel", "X-Initiated-From"}

// AuditContext builds the caller context stamped into mutated records: the
// authenticated key plus optional X-Actor-Email and X-Actor-Name headers.
func AuditContext(r *http.Request) model.AuditContext {
	ac := model.AuditContext{Source: requestSource(r)}

	actor := &model.Actor{
		Email: strings.TrimSpace(r.Header.Get("X-Actor-Email")),
		Name:  strings.TrimSpace(r.Header.Get("X-Actor-Name")),
	}
	if identity := GetIdentity(r.Context()); identity != nil {
		actor.ID = identity.ID
		actor.Role = identity.Role
		if actor.Name == "" {
			actor.Name = identity.Name
		}
	}
	if *actor != (model.Actor{}) {
		ac.Actor = actor
	}
	return ac
}

func requestSource(r *http.Request) string {
	for _, h := range sourceHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return DefaultSource
}
