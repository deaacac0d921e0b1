package models

// TableRole classifies a dataset's structural role in a data model.
type TableRole string

const (
	RoleFact         TableRole = "fact"
	RoleDimension    TableRole = "dimension"
	RoleReference    TableRole = "reference"
	RoleUnclassified TableRole = "unclassified"
)

// ValidTableRoles contains all valid table role values.
var ValidTableRoles = []TableRole{
	RoleFact,
	RoleDimension,
	RoleReference,
	RoleUnclassified,
}

// IsValidTableRole checks if the given role is valid.
func IsValidTableRole(r TableRole) bool {
	for _, v := range ValidTableRoles {
		if v == r {
			return true
		}
	}
	return false
}

// RoleAssignment is the role assigned to one dataset together with a short
// rationale naming the signals that decided (or failed to decide) it.
// Exactly one assignment exists per dataset at any time; re-analysis
// discards the previous one.
type RoleAssignment struct {
	DatasetName string    `json:"dataset_name" yaml:"dataset_name"`
	Role        TableRole `json:"role" yaml:"role"`
	Rationale   string    `json:"rationale" yaml:"rationale"`
}
