package rbac

import "go-attendance/internal/domain"

// Resources and actions checked by route middleware.
const (
	ResourceDevice     = "device"
	ResourceAttendance = "attendance"
	ResourceTimesheet  = "timesheet"
	ResourceHoliday    = "holiday"
	ResourceLeave      = "leave"
	ResourceEmployee   = "employee"
	ResourcePayroll    = "payroll"
	ResourceAudit      = "audit"

	ActionRead    = "read"
	ActionReadOwn = "read_own"
	ActionManage  = "manage"
	ActionSubmit  = "submit"
	ActionReset   = "reset"
)

// ModelText is the casbin model: role subjects with ADMIN inheriting EMPLOYEE.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type Policy struct {
	Role     string
	Resource string
	Action   string
}

var DefaultPolicies = []Policy{
	{domain.RoleEmployee, ResourceDevice, ActionSubmit},
	{domain.RoleEmployee, ResourceAttendance, ActionSubmit},
	{domain.RoleEmployee, ResourceTimesheet, ActionReadOwn},
	{domain.RoleEmployee, ResourceHoliday, ActionRead},

	{domain.RoleAdmin, ResourceDevice, ActionReset},
	{domain.RoleAdmin, ResourceAttendance, ActionRead},
	{domain.RoleAdmin, ResourceAttendance, ActionManage},
	{domain.RoleAdmin, ResourceTimesheet, ActionRead},
	{domain.RoleAdmin, ResourceHoliday, ActionManage},
	{domain.RoleAdmin, ResourceLeave, ActionRead},
	{domain.RoleAdmin, ResourceLeave, ActionManage},
	{domain.RoleAdmin, ResourceEmployee, ActionRead},
	{domain.RoleAdmin, ResourceEmployee, ActionManage},
	{domain.RoleAdmin, ResourcePayroll, ActionRead},
	{domain.RoleAdmin, ResourcePayroll, ActionManage},
	{domain.RoleAdmin, ResourceAudit, ActionRead},
}

// RoleInheritance lists (member, parent) pairs.
var RoleInheritance = [][2]string{
	{domain.RoleAdmin, domain.RoleEmployee},
}
