package seqio

import (
	"fmt"
	"strings"
)

// GFALine is any GFA record that can print itself
type GFALine interface {
	PrintGFAline() string
}

// GFALink is an oriented link between two segments
type GFALink struct {
	From       string
	FromOrient string
	To         string
	ToOrient   string
	Overlap    string
}

// String formats the link as from+ -> to- (overlap)
func (link GFALink) String() string {
	return fmt.Sprintf("%s%s -> %s%s (%s)", link.From, link.FromOrient, link.To, link.ToOrient, link.Overlap)
}

// ParseGFALink reads the fields of an L record from its printed form
func ParseGFALink(line GFALine) (GFALink, error) {
	fields := strings.Split(strings.TrimSpace(line.PrintGFAline()), "\t")
	if len(fields) < 6 || fields[0] != "L" {
		return GFALink{}, fmt.Errorf("not a GFA link: %q", line.PrintGFAline())
	}
	link := GFALink{From: fields[1], FromOrient: fields[2], To: fields[3], ToOrient: fields[4], Overlap: fields[5]}
	for _, orient := range []string{link.FromOrient, link.ToOrient} {
		if orient != "+" && orient != "-" {
			return GFALink{}, fmt.Errorf("bad orientation %q in link %s -> %s", orient, link.From, link.To)
		}
	}
	return link, nil
}
