package routes

type TransportType string

//goland:noinspection GoUnusedConst
const (
	TransportTypeBus       TransportType = "Bus"
	TransportTypeCoach     TransportType = "Coach"
	TransportTypeTram      TransportType = "Tram"
	TransportTypeRail      TransportType = "Rail"
	TransportTypeMetro     TransportType = "Metro"
	TransportTypeFerry     TransportType = "Ferry"
	TransportTypeCableCar  TransportType = "CableCar"
	TransportTypeFunicular TransportType = "Funicular"
	TransportTypeUnknown   TransportType = "UNKNOWN"
)

var routeTypeMapping = map[int]TransportType{
	0:   TransportTypeTram,
	1:   TransportTypeMetro,
	2:   TransportTypeRail,
	3:   TransportTypeBus,
	4:   TransportTypeFerry,
	5:   TransportTypeTram,
	6:   TransportTypeCableCar,
	7:   TransportTypeFunicular,
	11:  TransportTypeTram,
	200: TransportTypeCoach,
}

// TransportTypeFromRouteType maps a GTFS route_type onto a TransportType
func TransportTypeFromRouteType(routeType int) TransportType {
	if transportType, exists := routeTypeMapping[routeType]; exists {
		return transportType
	}

	return TransportTypeUnknown
}
