package agencytools

// ServiceSnapshot is the immutable set of service IDs whose trips are kept
type ServiceSnapshot struct {
	all bool
	ids map[string]struct{}
}

// AllServices keeps every trip regardless of its service
func AllServices() ServiceSnapshot {
	return ServiceSnapshot{all: true}
}

// NewServiceSnapshot keeps only the listed services. An empty list excludes
// every trip.
func NewServiceSnapshot(serviceIDs []string) ServiceSnapshot {
	ids := make(map[string]struct{}, len(serviceIDs))
	for _, serviceID := range serviceIDs {
		ids[serviceID] = struct{}{}
	}

	return ServiceSnapshot{ids: ids}
}

func (s ServiceSnapshot) Keeps(serviceID string) bool {
	if s.all {
		return true
	}

	_, exists := s.ids[serviceID]
	return exists
}

func (s ServiceSnapshot) ExcludingAll() bool {
	return !s.all && len(s.ids) == 0
}
