// Package pairing provides the record types shared by the extraction
// pipeline, storage layers and publishers.
package pairing

// Leg is one scheduled flight segment within a duty day.
type Leg struct {
	Day            int    `json:"day"`
	FlightNumber   string `json:"flight_number"`          // As displayed; deadheads normalised to 000DH.
	OriginalFlight string `json:"original_flight_number"` // Kept for traceability.
	DepStation     string `json:"dep_station"`
	ArrStation     string `json:"arr_station"`
	DepTime        string `json:"dep_time"` // HH:MM local.
	ArrTime        string `json:"arr_time"` // HH:MM local.
	Duration       string `json:"duration"` // Scheduled block time, raw token.
	IsDeadhead     bool   `json:"is_deadhead"`
}

// Layover is a rest period between duty days.
type Layover struct {
	Location string `json:"location"`
	Duration string `json:"duration"` // Raw token, or "N/A" when unknown.
}

// Trip is one extracted pairing. It is fully populated in a single pass and
// never mutated afterwards.
type Trip struct {
	TripNumber    string `json:"trip_number"`
	PairingNumber string `json:"pairing_number"`
	Base          string `json:"base,omitempty"` // Three-letter base code, may be unset.
	OriginalText  string `json:"original_text,omitempty"`

	EffectiveYear  int      `json:"effective_year"`
	OperatingDates []string `json:"operating_dates"` // Ascending ISO dates.

	TAFB        string `json:"tafb,omitempty"`
	TAFBMinutes int    `json:"tafb_minutes,omitempty"`

	CreditTime       string  `json:"credit_time,omitempty"`
	CreditMinutes    int     `json:"credit_minutes,omitempty"`
	CorrectedCredit  float64 `json:"correctedcredit"`
	CreditTimePerDay float64 `json:"credit_time_per_day"`

	PerDiem          float64 `json:"per_diem,omitempty"`
	PerDiemRaw       string  `json:"per_diem_raw,omitempty"` // Kept when the amount does not parse.
	CorrectedPerDiem int     `json:"correctedperdiem"`

	Days     map[string][]Leg `json:"days"` // Keyed by 1-based day-of-trip.
	Layovers []Layover        `json:"layovers"`

	HasDeadhead             bool     `json:"has_deadhead"`
	DeadheadLegs            []string `json:"deadhead_legs"`
	StartsOrEndsWithDH      bool     `json:"starts_or_ends_with_deadhead"`
	StartsWithDeadheadToYLW bool     `json:"starts_with_deadhead_to_ylw"`

	ReportTime     string `json:"report_time,omitempty"`
	ReportMinutes  int    `json:"report_minutes,omitempty"`
	ReleaseTime    string `json:"release_time,omitempty"`
	ReleaseMinutes int    `json:"release_minutes,omitempty"`

	LongestLayover float64 `json:"longest_layover"` // Hours, 2dp.
	DaysOfWork     int     `json:"days_of_work"`

	// Calendar holds, per operating-date instance, day-of-trip mapped to a
	// human-readable date ("Mon 06 Jul").
	Calendar []map[string]string `json:"calendar"`

	IsRedeye      bool `json:"is_redeye"`
	IsLazyPairing bool `json:"is_lazy_pairing"`
	IsWeekdayOnly bool `json:"is_weekday_only"`
	IsCommutable  bool `json:"is_commutable"`
	IsPrelim      bool `json:"is_prelim,omitempty"`
}
