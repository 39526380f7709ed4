package config

import "testing"

func TestDefaultsValidate(t *testing.T) {
	c := Defaults()
	c.BarcodeFileName = "barcodes.fastq"
	c.RNAFileName = "rna.fastq"
	c.OutputDir = "out"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected defaults plus required fields to validate, got %v", err)
	}
}

func TestValidateRejectsMissingFiles(t *testing.T) {
	c := Defaults()
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing BarcodeFileName")
	}
}

func TestValidateRejectsBadBarcodeWindow(t *testing.T) {
	c := Defaults()
	c.BarcodeFileName = "b"
	c.RNAFileName = "r"
	c.OutputDir = "o"
	c.BarcodeEnd = c.BarcodeStart
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for degenerate barcode window")
	}
}

func TestCycleLength(t *testing.T) {
	c := Defaults()
	if got, want := c.CycleLength(), c.BarcodeLength()+1; got != want {
		t.Fatalf("CycleLength() = %d, want %d", got, want)
	}
}
