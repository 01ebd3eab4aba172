package fill

// knownFieldAliases maps canonical I-765 item keys to the names those
// items carry across form editions. Item numbers restart in every part,
// so the keys are part-qualified. The list does not have to be
// exhaustive; anything missing falls through to variant and fuzzy
// matching.
var knownFieldAliases = map[string][]string{
	"part1.1.a":  {"Part1_Checkbox1a", "CB_InitialPermission", "Initial permission to accept employment"},
	"part1.1.b":  {"Part1_Checkbox1b", "CB_ReplacementDocument", "Replacement of lost employment authorization"},
	"part1.1.c":  {"Part1_Checkbox1c", "CB_RenewalPermission", "Renewal of my permission to accept employment"},
	"part2.1.a":  {"Line1a_FamilyName", "FamilyName", "Family Name Last Name"},
	"part2.1.b":  {"Line1b_GivenName", "GivenName", "Given Name First Name"},
	"part2.1.c":  {"Line1c_MiddleName", "MiddleName", "Middle Name"},
	"part2.2.a":  {"Line2a_FamilyName", "OtherFamilyName"},
	"part2.2.b":  {"Line2b_GivenName", "OtherGivenName"},
	"part2.2.c":  {"Line2c_MiddleName", "OtherMiddleName"},
	"part2.4.a":  {"Line4a_InCareofName", "InCareOfName", "In Care Of Name"},
	"part2.4.b":  {"Line4b_StreetNumberName", "StreetNumberName", "Street Number and Name"},
	"part2.4.c":  {"Line4c_AptSteFlrNumber", "AptSteFlrNumber", "Unit Number"},
	"part2.4.d":  {"Line4d_CityOrTown", "CityOrTown", "City or Town"},
	"part2.4.e":  {"Line4e_State", "MailingState"},
	"part2.4.f":  {"Line4f_ZipCode", "ZipCode", "Zip Code"},
	"part2.7":    {"Line7_AlienNumber", "AlienNumber", "Alien Registration Number"},
	"part2.8":    {"Line8_ElecAcctNumber", "USCISOnlineAcctNumber", "USCIS Online Account Number"},
	"part2.9":    {"Line9_Checkbox_Gender", "Gender"},
	"part2.10":   {"Line10_Checkbox_Marital", "MaritalStatus", "Marital Status"},
	"part2.13":   {"Line13_SSN", "SSN", "Social Security Number"},
	"part2.14":   {"Line14_CityTownOfBirth", "CityTownOfBirth", "City Town of Birth"},
	"part2.15":   {"Line15_CountryOfBirth", "CountryOfBirth", "Country of Birth"},
	"part2.16":   {"Line16_DateOfBirth", "DateOfBirth", "Date of Birth"},
	"part2.17":   {"Line17_CountryOfCitizenship", "CountryOfCitizenship", "Country of Citizenship or Nationality"},
	"part2.18.a": {"Line18a_I94Number", "I94Number", "Form I-94 Arrival-Departure Record Number"},
	"part2.18.b": {"Line18b_PassportNumber", "PassportNumber", "Passport Number"},
	"part2.18.c": {"Line18c_TravelDocNumber", "TravelDocNumber", "Travel Document Number"},
	"part2.19":   {"Line19_DateOfLastArrival", "DateOfLastArrival", "Date of Last Arrival"},
	"part2.20":   {"Line20_PlaceOfLastArrival", "PlaceOfLastArrival", "Place of Last Arrival"},
	"part2.21":   {"Line21_StatusLastArrival", "ImmigrationStatusAtArrival"},
	"part2.22":   {"Line22_CurrentStatus", "CurrentImmigrationStatus", "Current Immigration Status"},
	"part2.23":   {"Line23_SEVISNumber", "SEVISNumber", "Student and Exchange Visitor Information"},
	"part2.27":   {"Line27_EligibilityCategory", "EligibilityCategory", "Eligibility Category"},
	"part3.3":    {"Line3_DaytimePhoneNumber1", "DaytimePhoneNumber", "Daytime Telephone Number"},
	"part3.5":    {"Line5_EmailAddress", "EmailAddress", "Email Address"},
}

// aliasTable maps normalized alias tokens to the full name of the
// matching field in one specific document. Built once per fill; lookup
// is then a couple of map probes instead of a document scan.
type aliasTable map[string]string

// buildAliasTable scans the document fields against the known alias
// pairs. Every alias of a matched item resolves to the field's full
// name, as does the part-qualified item key itself.
func buildAliasTable(fields []*Field) aliasTable {
	t := make(aliasTable)
	for item, aliases := range knownFieldAliases {
		for _, f := range fields {
			if !anyAliasMatches(f, aliases) {
				continue
			}
			t[normalizeFieldName(item)] = f.FullName
			for _, a := range aliases {
				key := normalizeFieldName(a)
				if _, taken := t[key]; !taken {
					t[key] = f.FullName
				}
			}
			break
		}
	}
	return t
}

func anyAliasMatches(f *Field, aliases []string) bool {
	for _, a := range aliases {
		if namesMatch(f.FullName, a) || namesMatch(f.Name, a) {
			return true
		}
	}
	return false
}

// lookup probes the table with the declared name first and the item
// number second. The item key only helps when the schema author left
// pdf_field_name blank and the declared name fell back to the item.
func (t aliasTable) lookup(declared, item string) (string, bool) {
	if name, ok := t[normalizeFieldName(declared)]; ok {
		return name, true
	}
	if item != "" {
		if name, ok := t[normalizeFieldName(item)]; ok {
			return name, true
		}
	}
	return "", false
}
