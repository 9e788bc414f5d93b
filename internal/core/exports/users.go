package exports

import "github.com/JonMunkholm/ameliadesk/internal/core"

var customerColumns = []core.Column{
	{Name: "id", Key: "id"},
	{Name: "first_name", Key: "firstName"},
	{Name: "last_name", Key: "lastName"},
	{Name: "email", Key: "email"},
	{Name: "phone", Key: "phone"},
	{Name: "birthday", Key: "birthday"},
	{Name: "gender", Key: "gender"},
	{Name: "status", Key: "status"},
	{Name: "note", Key: "note"},
	{Name: "country_phone_iso", Key: "countryPhoneIso"},
	{Name: "external_id", Key: "externalId"},
	{Name: "total_appointments", Key: "totalAppointments"},
}

var employeeColumns = []core.Column{
	{Name: "id", Key: "id"},
	{Name: "first_name", Key: "firstName"},
	{Name: "last_name", Key: "lastName"},
	{Name: "email", Key: "email"},
	{Name: "phone", Key: "phone"},
	{Name: "status", Key: "status"},
	{Name: "location_id", Key: "locationId"},
	{Name: "time_zone", Key: "timeZone"},
	{Name: "note", Key: "note"},
}

func init() {
	registerCustomers()
	registerEmployees()
}

func registerCustomers() {
	core.Register(core.Export{
		Key:      "customers",
		Label:    "Customers",
		Resource: "customers",
		Columns:  core.ColumnNames(customerColumns),
		Flatten:  core.FlattenObjects(customerColumns),
	})
}

func registerEmployees() {
	core.Register(core.Export{
		Key:      "employees",
		Label:    "Employees",
		Resource: "employees",
		Columns:  core.ColumnNames(employeeColumns),
		Flatten:  core.FlattenObjects(employeeColumns),
	})
}
