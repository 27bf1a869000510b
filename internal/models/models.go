// Package models defines shared data types
package models

// Route is a CTA bus route as returned by getroutes
type Route struct {
	Code       string `json:"rt"`
	Name       string `json:"rtnm"`
	Color      string `json:"rtclr"`
	Designator string `json:"rtdd"`
}

// Direction is a travel direction label for a route
type Direction struct {
	Label string `json:"dir"`
}

// Stop is a bus stop served by a (route, direction) pair
type Stop struct {
	ID   string   `json:"stpid"`
	Name string   `json:"stpnm"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// Prediction is a forecasted bus arrival at a stop
type Prediction struct {
	Type        string `json:"typ,omitempty"`
	StopID      string `json:"stpid"`
	StopName    string `json:"stpnm"`
	VehicleID   string `json:"vid"`
	Route       string `json:"rt"`
	Direction   string `json:"rtdir"`
	Destination string `json:"des"`
	Time        string `json:"prdtm"`
	Delayed     bool   `json:"dly"`
	Countdown   string `json:"prdctdn"`
}

// Vehicle is a live bus position, used for the map overlay
type Vehicle struct {
	ID          string `json:"vid"`
	Timestamp   string `json:"tmstmp"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Heading     string `json:"hdg"`
	PatternID   int    `json:"pid"`
	Route       string `json:"rt"`
	Destination string `json:"des"`
	PatternDist int    `json:"pdist"`
	Delayed     bool   `json:"dly"`
	Speed       int    `json:"spd"`
	TripID      string `json:"tatripid"`
	BlockID     string `json:"tablockid"`
	Zone        string `json:"zone,omitempty"`
}

// Arrival is a CTA train arrival reshaped for display
type Arrival struct {
	RunNumber      string `json:"runNumber"`
	Line           string `json:"line"`
	LineFullName   string `json:"lineFullName"`
	LineColor      string `json:"lineColor"`
	Destination    string `json:"destination"`
	ArrivalTime    string `json:"arrivalTime"`
	IsApproaching  bool   `json:"isApproaching"`
	IsDelayed      bool   `json:"isDelayed"`
	IsScheduled    bool   `json:"isScheduled"`
	RawArrivalTime string `json:"rawArrivalTime"`
}

// Status returns the single badge shown next to an arrival
func (a Arrival) Status() string {
	switch {
	case a.IsApproaching:
		return "Approaching"
	case a.IsDelayed:
		return "Delayed"
	case a.IsScheduled:
		return "Scheduled"
	default:
		return "Live"
	}
}

// MetraArrival is a commuter rail arrival derived from a GTFS-RT trip update
type MetraArrival struct {
	TripID       string `json:"tripId"`
	RouteID      string `json:"routeId"`
	StopID       string `json:"stopId"`
	ArrivalTime  string `json:"arrivalTime"`
	ArrivalUnix  int64  `json:"arrivalUnix"`
	DelaySeconds int32  `json:"delaySeconds"`
	MinutesAway  int    `json:"minutesAway"`
}

// ServiceAlert is an active commuter rail service alert
type ServiceAlert struct {
	ID          string   `json:"id"`
	Routes      []string `json:"routes"`
	Header      string   `json:"header"`
	Description string   `json:"description"`
}
