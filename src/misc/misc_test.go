package misc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestCheckExt(t *testing.T) {
	tests := []struct {
		file string
		ok   bool
	}{
		{"reads.fa", true},
		{"reads.fastq.gz", true},
		{"graph.gfa", false},
		{"fa", true},
	}
	for _, tt := range tests {
		err := CheckExt(tt.file, []string{"fa", "fasta", "fastq", "fq"})
		if (err == nil) != tt.ok {
			t.Errorf("CheckExt(%q) returned %v, wanted ok=%v", tt.file, err, tt.ok)
		}
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	if err := CheckFile(filepath.Join(dir, "missing.gfa")); err == nil {
		t.Fatal("missing file should not pass the check")
	}
	present := filepath.Join(dir, "present.gfa")
	if err := os.WriteFile(present, []byte("H\tVN:Z:1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CheckFile(present); err != nil {
		t.Fatal(err)
	}
}

func TestCheckRequiredFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("graph", "", "")
	if err := cmd.MarkFlagRequired("graph"); err != nil {
		t.Fatal(err)
	}
	if err := CheckRequiredFlags(cmd.Flags()); err == nil {
		t.Fatal("unset required flag should be reported")
	}
	if err := cmd.Flags().Set("graph", "g.gfa"); err != nil {
		t.Fatal(err)
	}
	if err := CheckRequiredFlags(cmd.Flags()); err != nil {
		t.Fatal(err)
	}
}

func TestStartLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "lja.log")
	fh := StartLogging(logFile)
	defer fh.Close()
	NewLogger(fh).Printf("hello")
	if err := CheckFile(logFile); err != nil {
		t.Fatal(err)
	}
}
