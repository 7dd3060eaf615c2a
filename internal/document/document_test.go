package document

import (
	"encoding/json"
	"testing"
	"time"

	"pairing_parser/internal/extract"
)

var testOpts = Options{
	Extract: extract.Options{
		ReferenceDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		EffectiveYear: 2026,
	},
}

const finalDoc = `COMPANY CREW PLANNING
Internal distribution only.
TRIP #1234  5678  (YYC)  effective JUL 05 - JUL 26 [1,1,1,1,1,0,0]
 RPT 12:05
  1 AC123  YYC YVR 08:00 10:00  2h00
 RLS 21:40
TAFB: 25h30
Credit Time: 18h45
PERDIEM: 120.00
TRIP #4321  8765  (YVR)
TAFB: 12h00
  1 WS200  YVR YYC 09:00 10:30  1h30
`

const prelimDoc = `Pairing changes effective next bid period.
YEG: 111____ effective SEP 01-SEP 30
  1 WS500  YEG YYC 08:00 09:15  1h15
 ---- YYC  HOTEL 14h00
  2 WS501  YYC YEG 10:00 11:15  1h15
TAFB: 30h00
Credit Time: 10h00
`

func TestParse_FinalDocument(t *testing.T) {
	trips := Parse(finalDoc, testOpts)
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}

	if trips[0].TripNumber != "1234" || trips[0].Base != "YYC" {
		t.Errorf("trip[0] = %s/%s base %s", trips[0].TripNumber, trips[0].PairingNumber, trips[0].Base)
	}
	if trips[0].CorrectedPerDiem != 60 {
		t.Errorf("CorrectedPerDiem = %d, want 60", trips[0].CorrectedPerDiem)
	}
	if trips[0].CreditMinutes != 1125 {
		t.Errorf("CreditMinutes = %d, want 1125", trips[0].CreditMinutes)
	}
	if len(trips[0].OperatingDates) != 15 {
		t.Errorf("got %d operating dates, want 15 (Mon-Fri over JUL 05-26)", len(trips[0].OperatingDates))
	}
	if len(trips[0].Days["1"]) != 1 {
		t.Errorf("day 1 has %d legs, want 1", len(trips[0].Days["1"]))
	}

	if trips[1].TripNumber != "4321" || trips[1].Base != "YVR" {
		t.Errorf("trip[1] = %s/%s base %s", trips[1].TripNumber, trips[1].PairingNumber, trips[1].Base)
	}
	if trips[1].IsPrelim {
		t.Error("final trip tagged prelim")
	}
}

func TestParse_PrelimDocument(t *testing.T) {
	trips := Parse(prelimDoc, testOpts)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	trip := trips[0]
	if !trip.IsPrelim {
		t.Error("IsPrelim = false, want true")
	}
	if trip.Base != "YEG" {
		t.Errorf("Base = %q, want YEG", trip.Base)
	}
	if trip.DaysOfWork != 2 {
		t.Errorf("DaysOfWork = %d, want 2", trip.DaysOfWork)
	}
}

func TestParse_DuplicateSuppression(t *testing.T) {
	// The prelim block resolves to the same (trip, pairing) pair as the
	// final trip; only the final record may survive.
	doc := `Pairing changes effective next bid period.
YEG: 111____ effective SEP 01-SEP 30
TAFB: 30h00
  1 WS500  YEG YYC 08:00 09:15  1h15
TRIP #YEG  P000042  (YEG)
TAFB: 25h00
  1 WS100  YEG YYC 08:00 09:00  1h00
`
	opts := testOpts
	opts.GenerateID = func(string) string { return "P000042" }

	trips := Parse(doc, opts)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1 after dedupe", len(trips))
	}
	if trips[0].IsPrelim {
		t.Error("surviving record is the prelim, want the final")
	}
	if trips[0].TAFB != "25h00" {
		t.Errorf("TAFB = %q, want the final record's 25h00", trips[0].TAFB)
	}
}

func TestParse_Idempotent(t *testing.T) {
	a, err := json.Marshal(Parse(finalDoc, testOpts))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(Parse(finalDoc, testOpts))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("re-running Parse on identical input produced different output")
	}
}

func TestParse_Empty(t *testing.T) {
	if trips := Parse("", testOpts); len(trips) != 0 {
		t.Errorf("empty document produced %d trips", len(trips))
	}
	if trips := Parse("nothing recognisable here", testOpts); len(trips) != 0 {
		t.Errorf("unrecognisable document produced %d trips", len(trips))
	}
}
