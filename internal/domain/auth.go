package domain

// PrincipalKind differentiates callers backed by a user row from synthetic demo callers.
type PrincipalKind string

const (
	PrincipalPersisted PrincipalKind = "PERSISTED"
	PrincipalDemo      PrincipalKind = "DEMO"
)

// DemoIDPrefix marks subject and organization ids that have no backing row.
const DemoIDPrefix = "demo-"
