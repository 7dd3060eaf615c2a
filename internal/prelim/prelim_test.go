package prelim

import (
	"testing"
	"time"

	"pairing_parser/internal/extract"
)

var testOpts = extract.Options{
	ReferenceDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	EffectiveYear: 2026,
}

const prelimBlock = `YEG: 111____ effective SEP 01-SEP 30
 RPT 12:05
  1 WS500  YEG YYC 08:00 09:15  1h15
 ---- YYC  HOTEL overnight 14h00
  2 WS501  YYC YEG 10:00 11:15  1h15
TAFB: 30h00
Credit Time: 10h00
`

func TestAdapt_PrelimBlock(t *testing.T) {
	trip := Adapt(prelimBlock, testOpts, nil)
	if trip == nil {
		t.Fatal("expected trip, got nil")
	}

	if !trip.IsPrelim {
		t.Error("IsPrelim = false, want true")
	}
	if trip.Base != "YEG" {
		t.Errorf("Base = %q, want %q", trip.Base, "YEG")
	}
	if trip.TripNumber != "YEG" {
		t.Errorf("TripNumber = %q, want %q", trip.TripNumber, "YEG")
	}
	if trip.PairingNumber == "" || trip.PairingNumber[0] != 'P' {
		t.Errorf("PairingNumber = %q, want synthetic P-identifier", trip.PairingNumber)
	}

	if trip.DaysOfWork != 2 {
		t.Errorf("DaysOfWork = %d, want 2", trip.DaysOfWork)
	}
	if len(trip.Layovers) != 1 {
		t.Fatalf("got %d layovers, want 1", len(trip.Layovers))
	}
	if trip.Layovers[0].Location != "YYC" {
		t.Errorf("layover location = %q, want YYC", trip.Layovers[0].Location)
	}

	// 111____ keeps Mon-Wed; every operating date must be resolved.
	if len(trip.OperatingDates) == 0 {
		t.Error("no operating dates resolved from the effective clause")
	}
}

func TestAdapt_Deterministic(t *testing.T) {
	a := Adapt(prelimBlock, testOpts, nil)
	b := Adapt(prelimBlock, testOpts, nil)
	if a == nil || b == nil {
		t.Fatal("expected trips")
	}
	if a.PairingNumber != b.PairingNumber {
		t.Errorf("fingerprint not deterministic: %q vs %q", a.PairingNumber, b.PairingNumber)
	}
}

func TestAdapt_InjectedIDFunc(t *testing.T) {
	trip := Adapt(prelimBlock, testOpts, func(string) string { return "P000042" })
	if trip == nil {
		t.Fatal("expected trip")
	}
	if trip.PairingNumber != "P000042" {
		t.Errorf("PairingNumber = %q, want injected P000042", trip.PairingNumber)
	}
}

func TestAdapt_RealHeaderReused(t *testing.T) {
	block := `YVR: 11111__ effective OCT 01-OCT 31
TRIP #777  888  (YVR)
TAFB: 20h00
  1 WS600  YVR YYC 08:00 09:30  1h30
`
	trip := Adapt(block, testOpts, nil)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if trip.TripNumber != "777" || trip.PairingNumber != "888" {
		t.Errorf("identifiers = %q/%q, want 777/888", trip.TripNumber, trip.PairingNumber)
	}
	if trip.IsPrelim {
		t.Error("block with a real header tagged prelim")
	}
}

func TestAdapt_NoBaseMask(t *testing.T) {
	block := `RESERVE LINES effective NOV 03-NOV 28
TAFB: 15h00
  1 WS700  YYC YVR 08:00 09:30  1h30
`
	trip := Adapt(block, testOpts, nil)
	if trip == nil {
		t.Fatal("expected trip")
	}
	if trip.Base != "RES" {
		t.Errorf("Base = %q, want leading-token fallback RES", trip.Base)
	}
	if !trip.IsPrelim {
		t.Error("IsPrelim = false")
	}
}

func TestFingerprintID(t *testing.T) {
	a := FingerprintID("some block")
	b := FingerprintID("some block")
	c := FingerprintID("another block")
	if a != b {
		t.Errorf("FingerprintID not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different blocks produced the same fingerprint")
	}
	if len(a) != 7 || a[0] != 'P' {
		t.Errorf("FingerprintID format = %q, want P followed by six digits", a)
	}
}
