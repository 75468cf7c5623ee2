package model

// ClinicStats is the dashboard aggregate: total counts plus the number of
// patients grouped by month of first visit, keyed by English month name.
type ClinicStats struct {
	TotalUsers        int            `json:"total_users"`
	TotalDoctors      int            `json:"total_doctors"`
	TotalPatients     int            `json:"total_patients"`
	TotalAppointments int            `json:"total_appointments"`
	PatientsPerMonth  map[string]int `json:"patients_per_month"`
}

// DoctorPatients groups a doctor with the patients they own.
type DoctorPatients struct {
	Doctor   User      `json:"doctor"`
	Patients []Patient `json:"patients"`
}

// MonthCount is one row of the patients-per-month grouping as it comes back
// from the store.
type MonthCount struct {
	Month int `db:"month" json:"month"`
	Count int `db:"count" json:"count"`
}
