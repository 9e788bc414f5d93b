package exports

import "github.com/JonMunkholm/ameliadesk/internal/core"

func init() {
	core.Register(core.Export{
		Key:          "appointments",
		Label:        "Appointments",
		Resource:     "appointments",
		Columns:      core.AppointmentExportColumns,
		Flatten:      core.FlattenAppointments,
		DateFiltered: true,
	})
}
