package dispatch

import (
	"slices"

	"github.com/go-waba-webhooks/internal/application/accountupdate"
	"github.com/go-waba-webhooks/internal/domain"
)

// FieldIs matches raw payloads whose entry[0].changes[0].field is one of fields.
func FieldIs(fields ...string) RawFilter {
	return func(raw map[string]any) bool {
		field, err := accountupdate.Field(raw)
		return err == nil && slices.Contains(fields, field)
	}
}

// EventIs matches updates whose event is one of events.
func EventIs(events ...string) AccountUpdateFilter {
	return func(u *domain.AccountUpdate) bool {
		return slices.Contains(events, u.Event())
	}
}

// Banned matches updates carrying ban information.
func Banned() AccountUpdateFilter {
	return func(u *domain.AccountUpdate) bool { return u.Banned() }
}

// CertificationStatusIs matches updates with partner certification info in one of statuses.
func CertificationStatusIs(statuses ...domain.CertificationStatus) AccountUpdateFilter {
	return func(u *domain.AccountUpdate) bool {
		info, ok := u.PartnerClientCertificationInfo()
		return ok && slices.Contains(statuses, info.Status)
	}
}
