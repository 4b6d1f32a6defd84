package access

// Visible reports whether inline content restricted to allowed should be
// shown for profile. A nil profile or a role outside allowed hides it; the
// caller is responsible for waiting until the session has resolved.
func Visible(profile *Profile, allowed RoleSet) bool {
	if profile == nil {
		return false
	}
	return allowed.Contains(profile.Role)
}

// Section identifies a top-level navigation entry.
type Section string

const (
	SectionDashboard      Section = "dashboard"
	SectionCommunications Section = "communications"
	SectionServices       Section = "services"
	SectionDocuments      Section = "documents"
	SectionBookings       Section = "bookings"
	SectionAnalytics      Section = "analytics"
	SectionResidents      Section = "residents"
	SectionBuilding       Section = "building"
)

// Sections lists the navigation entries in display order.
var Sections = []Section{
	SectionDashboard,
	SectionCommunications,
	SectionServices,
	SectionDocuments,
	SectionBookings,
	SectionAnalytics,
	SectionResidents,
	SectionBuilding,
}

var managementRoles = Roles(RoleSyndic, RoleAdmin)

var everyone = Roles(AllRoles...)

// SectionRoles returns the roles allowed to see a navigation section.
// Reports, residents and building data are for management only.
func SectionRoles(section Section) RoleSet {
	switch section {
	case SectionDashboard, SectionCommunications, SectionServices, SectionDocuments, SectionBookings:
		return everyone
	case SectionAnalytics, SectionResidents, SectionBuilding:
		return managementRoles
	}
	return RoleSet{}
}

// Label returns the navigation label for the section.
func (s Section) Label() string {
	switch s {
	case SectionDashboard:
		return "Dashboard"
	case SectionCommunications:
		return "Comunicação"
	case SectionServices:
		return "Serviços"
	case SectionDocuments:
		return "Documentos"
	case SectionBookings:
		return "Reservas"
	case SectionAnalytics:
		return "Relatórios"
	case SectionResidents:
		return "Moradores"
	case SectionBuilding:
		return "Edifício"
	}
	return ""
}

// VisibleSections filters Sections down to the ones profile may see.
func VisibleSections(profile *Profile) []Section {
	visible := make([]Section, 0, len(Sections))
	for _, section := range Sections {
		if Visible(profile, SectionRoles(section)) {
			visible = append(visible, section)
		}
	}
	return visible
}
