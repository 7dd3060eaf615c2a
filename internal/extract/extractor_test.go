package extract

import (
	"testing"
	"time"
)

var testOpts = Options{
	ReferenceDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	EffectiveYear: 2026,
}

const finalBlock = `TRIP #1234  5678  (YYC)  effective JUL 05 - JUL 26 [1,1,1,1,1,0,0]
 RPT 12:05
  1 AC123  YYC YVR 08:00 10:00  2h00
 RLS 21:40
TAFB: 25h30
Credit Time: 18h45
PERDIEM: 120.00
`

func TestBlock_FinalTrip(t *testing.T) {
	trip := Block(finalBlock, testOpts)
	if trip == nil {
		t.Fatal("expected trip, got nil")
	}

	if trip.TripNumber != "1234" {
		t.Errorf("TripNumber = %q, want %q", trip.TripNumber, "1234")
	}
	if trip.PairingNumber != "5678" {
		t.Errorf("PairingNumber = %q, want %q", trip.PairingNumber, "5678")
	}
	if trip.Base != "YYC" {
		t.Errorf("Base = %q, want %q", trip.Base, "YYC")
	}
	if trip.TAFB != "25h30" {
		t.Errorf("TAFB = %q, want %q", trip.TAFB, "25h30")
	}
	if trip.TAFBMinutes != 1530 {
		t.Errorf("TAFBMinutes = %d, want 1530", trip.TAFBMinutes)
	}
	if trip.CreditMinutes != 1125 {
		t.Errorf("CreditMinutes = %d, want 1125", trip.CreditMinutes)
	}
	if trip.CorrectedCredit != 18.75 {
		t.Errorf("CorrectedCredit = %v, want 18.75", trip.CorrectedCredit)
	}
	if trip.PerDiem != 120.0 {
		t.Errorf("PerDiem = %v, want 120.0", trip.PerDiem)
	}
	if trip.CorrectedPerDiem != 60 {
		t.Errorf("CorrectedPerDiem = %d, want 60", trip.CorrectedPerDiem)
	}

	// Mon-Fri mask over Jul 5-26 2026.
	if len(trip.OperatingDates) != 15 {
		t.Fatalf("got %d operating dates, want 15", len(trip.OperatingDates))
	}
	if trip.OperatingDates[0] != "2026-07-06" {
		t.Errorf("first operating date = %s, want 2026-07-06", trip.OperatingDates[0])
	}

	legs := trip.Days["1"]
	if len(legs) != 1 {
		t.Fatalf("day 1 has %d legs, want 1", len(legs))
	}
	if trip.DaysOfWork != 1 {
		t.Errorf("DaysOfWork = %d, want 1", trip.DaysOfWork)
	}
	if trip.CreditTimePerDay != 18.75 {
		t.Errorf("CreditTimePerDay = %v, want 18.75", trip.CreditTimePerDay)
	}
	if trip.ReportTime != "12:05" {
		t.Errorf("ReportTime = %q, want %q", trip.ReportTime, "12:05")
	}
	if trip.ReleaseTime != "21:40" {
		t.Errorf("ReleaseTime = %q, want %q", trip.ReleaseTime, "21:40")
	}
	if trip.IsPrelim {
		t.Error("final trip tagged prelim")
	}
	if trip.IsRedeye {
		t.Error("single-day trip flagged redeye")
	}
}

func TestBlock_DeadheadNormalisation(t *testing.T) {
	trip := Block(finalBlock, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}

	leg := trip.Days["1"][0]
	if !leg.IsDeadhead {
		t.Error("AC123 not classified as deadhead")
	}
	if leg.FlightNumber != DeadheadDisplay {
		t.Errorf("FlightNumber = %q, want %q", leg.FlightNumber, DeadheadDisplay)
	}
	if leg.OriginalFlight != "AC123" {
		t.Errorf("OriginalFlight = %q, want %q", leg.OriginalFlight, "AC123")
	}
	if !trip.HasDeadhead {
		t.Error("HasDeadhead = false")
	}
	if len(trip.DeadheadLegs) != 1 {
		t.Errorf("got %d deadhead legs, want 1", len(trip.DeadheadLegs))
	}
	if !trip.StartsOrEndsWithDH {
		t.Error("leading deadhead not flagged")
	}
	if trip.StartsWithDeadheadToYLW {
		t.Error("deadhead to YVR flagged as YLW")
	}
}

func TestBlock_DeadheadToReferenceStation(t *testing.T) {
	block := `TRIP #10 20 (YYC) TAFB: 30h00
  1 DH8100  YYC YLW 08:00 09:00  1h00
  2 WS200   YLW YYC 10:00 11:00  1h00
`
	trip := Block(block, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if !trip.StartsWithDeadheadToYLW {
		t.Error("leading deadhead to YLW not flagged")
	}
}

func TestBlock_TrailingDeadhead(t *testing.T) {
	block := `TRIP #11 21 (YYC) TAFB: 30h00
  1 WS200  YYC YVR 08:00 09:30  1h30
  2 DH300  YVR YYC 10:00 11:30  1h30
`
	trip := Block(block, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if !trip.StartsOrEndsWithDH {
		t.Error("trailing deadhead not flagged")
	}
	if trip.StartsWithDeadheadToYLW {
		t.Error("YLW sub-flag set for trailing deadhead")
	}
}

func TestBlock_RejectsHeaderless(t *testing.T) {
	block := "TAFB: 25h30\nCredit Time: 18h45\n  1 WS100 YYC YVR 08:00 10:00 2h00\n"
	if trip := Block(block, testOpts); trip != nil {
		t.Errorf("headerless block produced a trip: %+v", trip)
	}
}

func TestBlock_MissingFieldsDefault(t *testing.T) {
	block := "TRIP #99 88 (YUL) TAFB: garbage!!\n"
	trip := Block(block, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if trip.TAFBMinutes != 0 {
		t.Errorf("TAFBMinutes = %d, want 0 for unparseable token", trip.TAFBMinutes)
	}
	if trip.CreditTime != "" || trip.CreditMinutes != 0 {
		t.Error("credit fields set without a Credit Time label")
	}
	if trip.DaysOfWork != 0 {
		t.Errorf("DaysOfWork = %d, want 0 with no legs", trip.DaysOfWork)
	}
	if trip.CorrectedPerDiem != 0 {
		t.Errorf("CorrectedPerDiem = %d, want 0", trip.CorrectedPerDiem)
	}
}

func TestBlock_Layovers(t *testing.T) {
	block := `TRIP #50 60 (YYC) TAFB: 40h00
  1 WS100  YYC YVR 08:00 10:00  2h00
 ---- YVR  HOTEL 14h25
  2 WS101  YVR YEG 12:00 14:00  2h00
 overnight rest YEG 9h30
  3 WS102  YEG YYC 09:00 10:00  1h00
 short layover ABC 2h00
 layover DEF
`
	trip := Block(block, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}

	// Marker line, cue-only line over 8h, and cue-only line with no
	// duration qualify; the 2h00 turn reference is filtered out.
	if len(trip.Layovers) != 3 {
		t.Fatalf("got %d layovers, want 3: %+v", len(trip.Layovers), trip.Layovers)
	}
	if trip.Layovers[0].Location != "YVR" || trip.Layovers[0].Duration != "14h25" {
		t.Errorf("layover[0] = %+v", trip.Layovers[0])
	}
	if trip.Layovers[1].Location != "YEG" || trip.Layovers[1].Duration != "9h30" {
		t.Errorf("layover[1] = %+v", trip.Layovers[1])
	}
	if trip.Layovers[2].Location != "DEF" || trip.Layovers[2].Duration != "N/A" {
		t.Errorf("layover[2] = %+v", trip.Layovers[2])
	}
	if trip.LongestLayover != 14.42 {
		t.Errorf("LongestLayover = %v, want 14.42", trip.LongestLayover)
	}
}

func TestBlock_RedeyeBoundary(t *testing.T) {
	redeye := `TRIP #70 80 (YYC) TAFB: 40h00
  1 WS900  YYC YVR 01:50 02:10  0h20
 ---- YVR  HOTEL 20h00
  2 WS901  YVR YYC 09:00 10:00  1h00
`
	trip := Block(redeye, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if !trip.IsRedeye {
		t.Error("01:50-02:10 leg with a layover not flagged redeye")
	}

	// Same legs but no layover: not a redeye.
	noLayover := `TRIP #71 81 (YYC) TAFB: 40h00
  1 WS900  YYC YVR 01:50 02:10  0h20
  2 WS901  YVR YYC 09:00 10:00  1h00
`
	trip = Block(noLayover, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if trip.IsRedeye {
		t.Error("trip with no layovers flagged redeye")
	}
}

func TestBlock_RedeyeMidnightCrossing(t *testing.T) {
	block := `TRIP #72 82 (YYC) TAFB: 40h00
  1 WS902  YYC YVR 23:30 03:10  3h40
 ---- YVR  HOTEL 20h00
  2 WS903  YVR YYC 09:00 10:00  1h00
`
	trip := Block(block, testOpts)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if !trip.IsRedeye {
		t.Error("midnight-crossing leg over 02:00 not flagged redeye")
	}
}
