package seqio

import (
	"strings"
	"testing"
)

// setup variables
var (
	testSeq        = "acagcaggaaggcttactggagaaacgtatcgactataagaatcgg"
	expectedUpper  = "ACAGCAGGAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGG"
	expectedRevCom = "CCGATTCTTATAGTCGATACGTTTCTCCAGTAAGCCTTCCTGCTGT"
	testFasta      = ">read1 first\nACGTACGTTG\n>read2\nACGNACGT\n>read3\nttgca\n"
	testFastq      = "@read1\nACGTAC\n+\nIIIIII\n@read2\nGGCATT\n+\nIIIIII\n"
)

func TestNewSequence(t *testing.T) {
	seq, err := NewSequence(testSeq)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Len() != len(testSeq) {
		t.Fatalf("wrong length: %d vs %d", seq.Len(), len(testSeq))
	}
	if seq.String() != expectedUpper {
		t.Errorf("encoding did not round trip:\n%v\n%v", seq.String(), expectedUpper)
	}
	if _, err := NewSequence("ACGN"); err == nil {
		t.Fatal("N should be rejected")
	}
}

func TestRCView(t *testing.T) {
	seq := MustSequence(testSeq)
	rc := seq.RC()
	if rc.String() != expectedRevCom {
		t.Fatalf("RC view failed:\n%v\n%v", rc.String(), expectedRevCom)
	}
	if !rc.RC().Equal(seq) {
		t.Fatal("double RC should give the original sequence")
	}
	for i := 0; i < seq.Len(); i++ {
		if rc.At(i) != Complement(seq.At(seq.Len()-1-i)) {
			t.Fatalf("RC mismatch at %d", i)
		}
	}
	if string(RevComp([]byte(expectedUpper))) != expectedRevCom {
		t.Fatal("RevComp on text failed")
	}
}

func TestSubseq(t *testing.T) {
	seq := MustSequence(expectedUpper)
	if got := seq.Subseq(3, 10).String(); got != expectedUpper[3:10] {
		t.Fatalf("forward subseq: got %v", got)
	}
	if got := seq.RC().Subseq(5, 12).String(); got != expectedRevCom[5:12] {
		t.Fatalf("rc subseq: got %v", got)
	}
	if got := seq.Subseq(4, 20).RC().String(); got != string(RevComp([]byte(expectedUpper[4:20]))) {
		t.Fatalf("rc of subseq: got %v", got)
	}
}

func TestReadFasta(t *testing.T) {
	names := []string{}
	skipped, err := Read(strings.NewReader(testFasta), false, func(rec Record) error {
		names = append(names, rec.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Errorf("expected one skipped record, got %d", skipped)
	}
	if len(names) != 2 || names[0] != "read1" || names[1] != "read3" {
		t.Errorf("unexpected records: %v", names)
	}
}

func TestReadFastq(t *testing.T) {
	seqs := []string{}
	if _, err := Read(strings.NewReader(testFastq), true, func(rec Record) error {
		seqs = append(seqs, rec.Seq.String())
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 2 || seqs[1] != "GGCATT" {
		t.Errorf("unexpected records: %v", seqs)
	}
	if !IsFastq("reads.fq.gz") || IsFastq("reads.fa") {
		t.Error("IsFastq misclassified a file name")
	}
}

type printedLine string

func (l printedLine) PrintGFAline() string { return string(l) }

func TestParseGFALink(t *testing.T) {
	link, err := ParseGFALink(printedLine("L\ts1\t+\ts2\t-\t3M"))
	if err != nil {
		t.Fatal(err)
	}
	if link.From != "s1" || link.FromOrient != "+" || link.To != "s2" || link.ToOrient != "-" || link.Overlap != "3M" {
		t.Fatalf("bad link fields: %+v", link)
	}
	if link.String() != "s1+ -> s2- (3M)" {
		t.Fatalf("bad link string: %v", link)
	}
	if _, err := ParseGFALink(printedLine("L\ts1\t+\ts2\t-\t3M\tRC:i:4")); err != nil {
		t.Fatalf("optional fields should be ignored: %v", err)
	}
	if _, err := ParseGFALink(printedLine("S\ts1\tACGT\tLN:i:4")); err == nil {
		t.Fatal("segment line parsed as a link")
	}
	if _, err := ParseGFALink(printedLine("L\ts1\t*\ts2\t-\t3M")); err == nil {
		t.Fatal("bad orientation should be rejected")
	}
}
