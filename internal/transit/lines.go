package transit

// DefaultLineColor is used for line codes missing from the lookup table
const DefaultLineColor = "#808080"

// LineDetails is the display name and color of a CTA rail line
type LineDetails struct {
	Name  string
	Color string
}

// lineDetails maps Train Tracker route codes to display properties
var lineDetails = map[string]LineDetails{
	"Red":  {Name: "Red Line", Color: "#C0392B"},
	"Blue": {Name: "Blue Line", Color: "#3B5998"},
	"Brn":  {Name: "Brown Line", Color: "#6E4B3A"},
	"G":    {Name: "Green Line", Color: "#6BAE75"},
	"Org":  {Name: "Orange Line", Color: "#E08E45"},
	"P":    {Name: "Purple Line", Color: "#5E4A82"},
	"Pink": {Name: "Pink Line", Color: "#D28A94"},
	"Y":    {Name: "Yellow Line", Color: "#D6B84B"},
}

// LookupLine resolves a route code. Unknown codes keep the raw code as the
// name and get the default gray.
func LookupLine(code string) LineDetails {
	if details, ok := lineDetails[code]; ok {
		return details
	}
	return LineDetails{Name: code, Color: DefaultLineColor}
}
