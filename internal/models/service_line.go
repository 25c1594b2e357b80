package models

import "strings"

// ServiceLine selects which product area's categories and feedback apply.
type ServiceLine string

const (
	ServiceLineTelemedicine ServiceLine = "telemedicine"
	ServiceLineHelpline     ServiceLine = "helpline"
	ServiceLinePharmacy     ServiceLine = "pharmacy"
	ServiceLineLabResults   ServiceLine = "lab_results"
	ServiceLineAppointments ServiceLine = "appointments"
)

var knownServiceLines = map[ServiceLine]bool{
	ServiceLineTelemedicine: true,
	ServiceLineHelpline:     true,
	ServiceLinePharmacy:     true,
	ServiceLineLabResults:   true,
	ServiceLineAppointments: true,
}

// ParseServiceLine normalises s and reports whether it names a known line.
func ParseServiceLine(s string) (ServiceLine, bool) {
	line := ServiceLine(strings.ToLower(strings.TrimSpace(s)))
	return line, knownServiceLines[line]
}

func (s ServiceLine) Valid() bool { return knownServiceLines[s] }

func (s ServiceLine) String() string { return string(s) }

// ServiceLines lists the known lines in a stable order.
func ServiceLines() []ServiceLine {
	return []ServiceLine{
		ServiceLineTelemedicine,
		ServiceLineHelpline,
		ServiceLinePharmacy,
		ServiceLineLabResults,
		ServiceLineAppointments,
	}
}
