package pipeline

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EugOT/sircel/config"
)

func writeFastq(t *testing.T, path string, seqs []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for i, seq := range seqs {
		qual := make([]byte, len(seq))
		for j := range qual {
			qual[j] = 'I'
		}
		f.WriteString("@read")
		f.WriteString(itoa(i))
		f.WriteString("\n")
		f.WriteString(seq)
		f.WriteString("\n+\n")
		f.Write(qual)
		f.WriteString("\n")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func TestRunSingleBarcodeSynthetic(t *testing.T) {
	dir := t.TempDir()
	barcodePath := filepath.Join(dir, "barcodes.fastq")
	rnaPath := filepath.Join(dir, "rna.fastq")

	n := 200
	seqs := make([]string, n)
	for i := range seqs {
		seqs[i] = "ACGTACGTACGTAAAA"
	}
	writeFastq(t, barcodePath, seqs)
	writeFastq(t, rnaPath, seqs)

	outDir := filepath.Join(dir, "out")
	cfg := config.Defaults()
	cfg.BarcodeFileName = barcodePath
	cfg.RNAFileName = rnaPath
	cfg.OutputDir = outDir
	cfg.Breadth = 10
	cfg.Depth = 3
	cfg.Threads = 2
	cfg.IndexCap = 0

	if err := Run(cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "merged_paths.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ACGTACGTACGT") {
		t.Fatalf("expected the dominant barcode in merged_paths.txt, got %q", string(data))
	}

	batch, err := os.Open(filepath.Join(outDir, "batch.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer batch.Close()
	sc := bufio.NewScanner(batch)
	var lines int
	for sc.Scan() {
		lines++
	}
	if lines == 0 {
		t.Fatal("expected at least one batch.txt line")
	}
}

func TestRunFailsOnMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.BarcodeFileName = filepath.Join(dir, "missing.fastq")
	cfg.RNAFileName = filepath.Join(dir, "missing2.fastq")
	cfg.OutputDir = filepath.Join(dir, "out")

	err := Run(cfg)
	if err == nil {
		t.Fatal("expected an error for missing input files")
	}
}
