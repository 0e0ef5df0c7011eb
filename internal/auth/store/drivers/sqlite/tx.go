package sqlite

import "github.com/aussiebroadwan/campusauth/internal/auth/store"

type txStore struct {
	q querier
}

func (t *txStore) Users() store.Users       { return &usersRepo{q: t.q} }
func (t *txStore) AuditLog() store.AuditLog { return &auditLogRepo{q: t.q} }
