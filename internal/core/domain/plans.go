package domain

// Plan is one purchasable credit bundle. Amount is in major currency
// units; the gateway adapter converts to minor units.
type Plan struct {
	ID      string
	Credits int64
	Amount  int64
}

// Plans is the fixed catalog. IDs double as display names on the hosted
// checkout page.
var Plans = []Plan{
	{ID: "Basic", Credits: 100, Amount: 49},
	{ID: "Advanced", Credits: 500, Amount: 299},
	{ID: "Business", Credits: 5000, Amount: 999},
}

// PlanByID looks up a plan in the catalog.
func PlanByID(id string) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
