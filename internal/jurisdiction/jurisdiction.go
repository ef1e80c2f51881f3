// Package jurisdiction holds the static state / local-government-area
// reference data used to validate applications and admin accounts.
// It is read-only; there is no durable storage behind it.
package jurisdiction

import "sort"

// states maps every state to its LGA list. Only states this deployment
// actually validates LGAs for need a populated list; the remaining keys
// exist so state-of-origin values can be checked for membership.
var states = map[string][]string{
	"Ogun": {
		"Abeokuta North", "Abeokuta South", "Ado-Odo/Ota", "Ewekoro",
		"Ifo", "Ijebu East", "Ijebu North", "Ijebu North East",
		"Ijebu Ode", "Ikenne", "Imeko Afon", "Ipokia", "Obafemi Owode",
		"Odeda", "Odogbolu", "Ogun Waterside", "Remo North", "Shagamu",
		"Yewa North", "Yewa South",
	},
	"Lagos": {
		"Agege", "Ajeromi-Ifelodun", "Alimosho", "Amuwo-Odofin", "Apapa",
		"Badagry", "Epe", "Eti-Osa", "Ibeju-Lekki", "Ifako-Ijaiye",
		"Ikeja", "Ikorodu", "Kosofe", "Lagos Island", "Lagos Mainland",
		"Mushin", "Ojo", "Oshodi-Isolo", "Shomolu", "Surulere",
	},
	"Oyo": {
		"Afijio", "Akinyele", "Atiba", "Atisbo", "Egbeda",
		"Ibadan North", "Ibadan North-East", "Ibadan North-West",
		"Ibadan South-East", "Ibadan South-West", "Ibarapa Central",
		"Ibarapa East", "Ibarapa North", "Ido", "Irepo", "Iseyin",
		"Itesiwaju", "Iwajowa", "Kajola", "Lagelu", "Ogbomosho North",
		"Ogbomosho South", "Ogo Oluwa", "Olorunsogo", "Oluyole",
		"Ona Ara", "Orelope", "Ori Ire", "Oyo East", "Oyo West",
		"Saki East", "Saki West", "Surulere",
	},
	"Abia": {}, "Adamawa": {}, "Akwa Ibom": {}, "Anambra": {},
	"Bauchi": {}, "Bayelsa": {}, "Benue": {}, "Borno": {},
	"Cross River": {}, "Delta": {}, "Ebonyi": {}, "Edo": {},
	"Ekiti": {}, "Enugu": {}, "FCT": {}, "Gombe": {}, "Imo": {},
	"Jigawa": {}, "Kaduna": {}, "Kano": {}, "Katsina": {}, "Kebbi": {},
	"Kogi": {}, "Kwara": {}, "Nasarawa": {}, "Niger": {}, "Ondo": {},
	"Osun": {}, "Plateau": {}, "Rivers": {}, "Sokoto": {}, "Taraba": {},
	"Yobe": {}, "Zamfara": {},
}

// States returns all known state names, sorted.
func States() []string {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func IsState(name string) bool {
	_, ok := states[name]
	return ok
}

// LGAs returns the LGA list of a state, and whether the state is known.
func LGAs(state string) ([]string, bool) {
	lgas, ok := states[state]
	return lgas, ok
}

// IsLgaOf reports whether lga belongs to state.
func IsLgaOf(state, lga string) bool {
	for _, name := range states[state] {
		if name == lga {
			return true
		}
	}

	return false
}
