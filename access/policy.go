// Package access is the coarse authorization gate in front of every API
// operation: one static policy lookup per call, keyed by role and operation
// category. The only finer rule in the system is self-scoping, enforced at
// the handlers: guard operations always act on the authenticated guard's
// own identifier.
package access

import (
	"patrolwatch/models"
)

// Operation is a category of API call, not an individual route.
type Operation string

const (
	OpSubmitPatrol   Operation = "patrol:submit"
	OpListOwnPatrols Operation = "patrol:list-own"
	OpManageCatalog  Operation = "catalog:manage"
	OpViewReports    Operation = "reports:view"
	OpExportReports  Operation = "reports:export"
)

// policy maps (role, operation) to allow. Anything absent is denied, so an
// unknown role or operation fails closed.
var policy = map[models.Role]map[Operation]bool{
	models.RoleGuard: {
		OpSubmitPatrol:   true,
		OpListOwnPatrols: true,
	},
	models.RoleAdmin: {
		OpManageCatalog: true,
		OpViewReports:   true,
		OpExportReports: true,
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role models.Role, op Operation) bool {
	return policy[role][op]
}

// Operations lists every operation category, for exhaustive policy tests.
func Operations() []Operation {
	return []Operation{
		OpSubmitPatrol,
		OpListOwnPatrols,
		OpManageCatalog,
		OpViewReports,
		OpExportReports,
	}
}
