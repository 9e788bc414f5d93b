package exports

import "github.com/JonMunkholm/ameliadesk/internal/core"

var serviceColumns = []core.Column{
	{Name: "id", Key: "id"},
	{Name: "name", Key: "name"},
	{Name: "description", Key: "description"},
	{Name: "category_id", Key: "categoryId"},
	{Name: "price", Key: "price"},
	{Name: "duration", Key: "duration"},
	{Name: "min_capacity", Key: "minCapacity"},
	{Name: "max_capacity", Key: "maxCapacity"},
	{Name: "status", Key: "status"},
	{Name: "color", Key: "color"},
	{Name: "deposit", Key: "deposit"},
	{Name: "deposit_payment", Key: "depositPayment"},
	{Name: "time_before", Key: "timeBefore"},
	{Name: "time_after", Key: "timeAfter"},
}

var locationColumns = []core.Column{
	{Name: "id", Key: "id"},
	{Name: "name", Key: "name"},
	{Name: "description", Key: "description"},
	{Name: "address", Key: "address"},
	{Name: "phone", Key: "phone"},
	{Name: "latitude", Key: "latitude"},
	{Name: "longitude", Key: "longitude"},
	{Name: "status", Key: "status"},
}

var categoryColumns = []core.Column{
	{Name: "id", Key: "id"},
	{Name: "name", Key: "name"},
	{Name: "status", Key: "status"},
	{Name: "position", Key: "position"},
	{Name: "color", Key: "color"},
}

func init() {
	registerSimple("services", "Services", serviceColumns)
	registerSimple("locations", "Locations", locationColumns)
	registerSimple("categories", "Categories", categoryColumns)
}

// registerSimple registers a one-row-per-object export whose key matches
// its resource name.
func registerSimple(key, label string, cols []core.Column) {
	core.Register(core.Export{
		Key:      key,
		Label:    label,
		Resource: key,
		Columns:  core.ColumnNames(cols),
		Flatten:  core.FlattenObjects(cols),
	})
}
