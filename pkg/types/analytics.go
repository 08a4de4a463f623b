package types

// DashboardMetrics holds the main dashboard KPIs
type DashboardMetrics struct {
	VisitsToday      int64   `json:"visits_today"`
	ConfirmationRate float64 `json:"confirmation_rate"`
	ActiveCars       int64   `json:"active_cars"`
	AverageTime      float64 `json:"average_time"`
}

// NeighborhoodCount is one row of the top-neighborhoods ranking
type NeighborhoodCount struct {
	Neighborhood string `json:"neighborhood"`
	Count        int    `json:"count"`
}

// PatientAnalyticsReport aggregates patient-base statistics
type PatientAnalyticsReport struct {
	TotalPatients        int64               `json:"total_patients"`
	NewPatientsThisMonth int64               `json:"new_patients_this_month"`
	RiskDistribution     map[string]int      `json:"risk_distribution"`
	TopNeighborhoods     []NeighborhoodCount `json:"top_neighborhoods"`
}

// DateRange is an inclusive day range
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CarUtilization holds per-car utilization over a date range
type CarUtilization struct {
	Appointments    int     `json:"appointments"`
	Capacity        int     `json:"capacity"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// SlotCount is one hour-of-day bucket of the slot distribution,
// kept as an ordered sequence so hour labels stay sorted ascending
type SlotCount struct {
	Slot  string `json:"slot"`
	Count int    `json:"count"`
}

// ScheduleAnalyticsReport aggregates scheduling statistics for a date range
type ScheduleAnalyticsReport struct {
	DateRange            DateRange                 `json:"date_range"`
	TotalAppointments    int                       `json:"total_appointments"`
	StatusDistribution   map[string]int            `json:"status_distribution"`
	CarUtilization       map[string]CarUtilization `json:"car_utilization"`
	TimeSlotDistribution []SlotCount               `json:"time_slot_distribution"`
}

// HourCount is one hour-of-day bucket with a zero-padded HH:00 label
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// ConfirmationAnalyticsReport aggregates confirmation statistics over the
// trailing 30 days
type ConfirmationAnalyticsReport struct {
	ConfirmationByMethod map[string]int `json:"confirmation_by_method"`
	ConfirmationByHour   []HourCount    `json:"confirmation_by_hour"`
}

// CalendarCar is one car's schedule within a calendar view
type CalendarCar struct {
	CarID        string         `json:"car_id"`
	Driver       string         `json:"driver"`
	Appointments []*Appointment `json:"appointments"`
	Total        int            `json:"total"`
	Capacity     int            `json:"capacity"`
}

// CalendarView groups a day's appointments by active car
type CalendarView struct {
	Date              string                 `json:"date"`
	TotalAppointments int                    `json:"total_appointments"`
	Cars              map[string]CalendarCar `json:"cars"`
}

// ImportReport summarizes a bulk schedule import
type ImportReport struct {
	Filename  string   `json:"filename"`
	TotalRows int      `json:"total_rows"`
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

// PatientHistoryReport is the collection-history projection for one patient
type PatientHistoryReport struct {
	PatientID        string             `json:"patient_id"`
	PatientName      string             `json:"patient_name"`
	TotalCollections int                `json:"total_collections"`
	History          []CollectionRecord `json:"history"`
}
