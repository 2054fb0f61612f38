package domain

import "strings"

// Built-in role names.
const (
	RoleAdmin  = "ADMIN"
	RoleUser   = "USER"
	RoleViewer = "VIEWER"
)

// Resources guarded by permission tags.
const (
	ResourceDevices     = "devices"
	ResourceModels      = "models"
	ResourceFloors      = "floors"
	ResourceConnections = "connections"
	ResourceAttributes  = "attributes"
	ResourceLogs        = "logs"
	ResourceUsers       = "users"
	ResourceRoles       = "roles"
)

// Permission tags referenced directly by the router.
const (
	PermAdminAccess = "admin:access"
	PermReadUsers   = "read:users"
	PermWriteUsers  = "write:users"
	PermDeleteUsers = "delete:users"
)

var resources = []string{
	ResourceDevices,
	ResourceModels,
	ResourceFloors,
	ResourceConnections,
	ResourceAttributes,
	ResourceLogs,
	ResourceUsers,
	ResourceRoles,
}

// inventory resources are the ones a USER may edit.
var inventoryResources = []string{
	ResourceDevices,
	ResourceModels,
	ResourceFloors,
	ResourceConnections,
	ResourceAttributes,
}

// Perm builds a tag such as "write:devices".
func Perm(action, resource string) string {
	return action + ":" + resource
}

// AllPermissions returns the closed permission enumeration in a stable order.
func AllPermissions() []string {
	out := make([]string, 0, len(resources)*3+1)
	for _, action := range []string{"read", "write", "delete"} {
		for _, r := range resources {
			out = append(out, Perm(action, r))
		}
	}
	return append(out, PermAdminAccess)
}

var knownPermissions = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range AllPermissions() {
		m[p] = struct{}{}
	}
	return m
}()

// IsKnownPermission reports whether tag belongs to the enumeration.
func IsKnownPermission(tag string) bool {
	_, ok := knownPermissions[tag]
	return ok
}

// BuiltinRoles returns the default role → permission mapping seeded at start.
func BuiltinRoles() map[string][]string {
	var user, viewer []string
	for _, r := range resources {
		if r != ResourceUsers {
			user = append(user, Perm("read", r))
		}
	}
	for _, r := range inventoryResources {
		user = append(user, Perm("write", r), Perm("delete", r))
		viewer = append(viewer, Perm("read", r))
	}
	user = append(user, Perm("write", ResourceLogs))
	viewer = append(viewer, Perm("read", ResourceLogs))

	return map[string][]string{
		RoleAdmin:  AllPermissions(),
		RoleUser:   user,
		RoleViewer: viewer,
	}
}

// IsBuiltinRole reports whether name is one of the protected default roles.
func IsBuiltinRole(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}
