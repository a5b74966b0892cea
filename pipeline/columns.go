package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Column identifies one exportable column of the discharge file.
// The value is the slug used in URLs and CLI flags.
type Column string

const (
	ColumnHealthServiceArea Column = "health_service_area"
	ColumnHospitalCounty    Column = "hospital_county"
	ColumnFacilityName      Column = "facility_name"
	ColumnAgeGroup          Column = "age_group"
	ColumnZipCode           Column = "zip_code_3_digits"
	ColumnGender            Column = "gender"
	ColumnRace              Column = "race"
	ColumnEthnicity         Column = "ethnicity"
	ColumnLengthOfStay      Column = "length_of_stay"
	ColumnAdmissionType     Column = "type_of_admission"
	ColumnDisposition       Column = "patient_disposition"
	ColumnDischargeYear     Column = "discharge_year"
	ColumnDRGDescription    Column = "apr_drg_description"
	ColumnSeverity          Column = "apr_severity_of_illness_description"
	ColumnPaymentTypology   Column = "payment_typology_1"
	ColumnEmergency         Column = "emergency_department_indicator"
	ColumnTotalCharges      Column = "total_charges"
	ColumnTotalCosts        Column = "total_costs"
)

var columnHeaders = map[Column]string{
	ColumnHealthServiceArea: "Health Service Area",
	ColumnHospitalCounty:    "Hospital County",
	ColumnFacilityName:      "Facility Name",
	ColumnAgeGroup:          "Age Group",
	ColumnZipCode:           "Zip Code - 3 digits",
	ColumnGender:            "Gender",
	ColumnRace:              "Race",
	ColumnEthnicity:         "Ethnicity",
	ColumnLengthOfStay:      "Length of Stay",
	ColumnAdmissionType:     "Type of Admission",
	ColumnDisposition:       "Patient Disposition",
	ColumnDischargeYear:     "Discharge Year",
	ColumnDRGDescription:    "APR DRG Description",
	ColumnSeverity:          "APR Severity of Illness Description",
	ColumnPaymentTypology:   "Payment Typology 1",
	ColumnEmergency:         "Emergency Department Indicator",
	ColumnTotalCharges:      "Total Charges",
	ColumnTotalCosts:        "Total Costs",
}

// AllColumns lists every exportable column in source file order.
var AllColumns = []Column{
	ColumnHealthServiceArea,
	ColumnHospitalCounty,
	ColumnFacilityName,
	ColumnAgeGroup,
	ColumnZipCode,
	ColumnGender,
	ColumnRace,
	ColumnEthnicity,
	ColumnLengthOfStay,
	ColumnAdmissionType,
	ColumnDisposition,
	ColumnDischargeYear,
	ColumnDRGDescription,
	ColumnSeverity,
	ColumnPaymentTypology,
	ColumnEmergency,
	ColumnTotalCharges,
	ColumnTotalCosts,
}

// RequiredColumns must be present in every source file.
var RequiredColumns = []Column{ColumnLengthOfStay, ColumnAgeGroup, ColumnGender, ColumnAdmissionType}

// DefaultColumns is the initial table/export selection.
func DefaultColumns() []Column {
	return []Column{ColumnAgeGroup, ColumnGender, ColumnLengthOfStay}
}

// Header returns the source file header for the column.
func (c Column) Header() string {
	return columnHeaders[c]
}

func (c Column) Valid() bool {
	_, ok := columnHeaders[c]
	return ok
}

// ParseColumns maps slugs (or exact headers) to columns, keeping order and
// dropping duplicates.
func ParseColumns(ids []string) ([]Column, error) {
	cols := make([]Column, 0, len(ids))
	seen := map[Column]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		c := Column(id)
		if !c.Valid() {
			c = Column(Slug(id))
		}
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	return cols, nil
}

var nonAlnum = regexp.MustCompile("[^a-zA-Z0-9]+")

// Slug turns a header into a lower-case ascii identifier:
// "Zip Code - 3 digits" -> "zip_code_3_digits".
func Slug(header string) string {
	s := unidecode.Unidecode(strings.TrimSpace(header))
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.ToLower(strings.Trim(s, "_"))
}
