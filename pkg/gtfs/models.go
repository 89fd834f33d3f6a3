package gtfs

type Agency struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
	Language string `csv:"agency_lang"`
	Phone    string `csv:"agency_phone"`
}

type Stop struct {
	ID           string `csv:"stop_id"`
	Code         string `csv:"stop_code"`
	Name         string `csv:"stop_name"`
	Description  string `csv:"stop_desc"`
	Latitude     string `csv:"stop_lat"`
	Longitude    string `csv:"stop_lon"`
	ZoneID       string `csv:"zone_id"`
	Type         string `csv:"location_type"`
	Parent       string `csv:"parent_station"`
	Wheelchair   string `csv:"wheelchair_boarding"`
	PlatformCode string `csv:"platform_code"`
}

type Route struct {
	ID          string `csv:"route_id"`
	AgencyID    string `csv:"agency_id"`
	ShortName   string `csv:"route_short_name"`
	LongName    string `csv:"route_long_name"`
	Description string `csv:"route_desc"`
	URL         string `csv:"route_url"`
	Colour      string `csv:"route_color"`
	TextColour  string `csv:"route_text_color"`
	Type        string `csv:"route_type"`
}

type Trip struct {
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
	ID        string `csv:"trip_id"`
	Headsign  string `csv:"trip_headsign"`
	Name      string `csv:"trip_short_name"`
	BlockID   string `csv:"block_id"`
	ShapeID   string `csv:"shape_id"`

	// Kept as text so a missing value can be told apart from direction 0
	DirectionID string `csv:"direction_id"`
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopHeadsign  string `csv:"stop_headsign"`
	StopSequence  string `csv:"stop_sequence"`
}
