package station

import "fmt"

// archiveEntries is the static archive the station pages through.
var archiveEntries = []string{
	"1983-04-11 relay sweep complete",
	"1983-04-12 vault door 3 sealed",
	"1983-04-14 tape 0117 rewound twice",
	"1983-04-19 operator shift unlogged",
	"1983-05-02 signal floor 0.4 dB high",
	"1983-05-02 signal floor nominal",
	"1983-05-07 archive bus re-seated",
	"1983-05-21 node 07 silent 11 min",
	"1983-06-03 checksum 7A1F mismatch",
	"1983-06-03 checksum 7A1F matched",
	"1983-06-18 corridor B lights cycled",
	"1983-07-01 whisper channel closed",
	"1983-07-09 reel 0142 missing label",
	"1983-07-09 reel 0142 labelled",
	"1983-08-15 clock offset -00:00:03",
	"1983-08-30 sensor grid 4/6 hot",
	"1983-09-12 index rebuilt",
	"1983-09-13 index rebuilt",
	"1983-10-31 no entry",
	"1983-11-02 door 3 found open",
	"1983-11-02 door 3 sealed",
	"1983-12-24 operator returned",
	"1984-01-01 archive rolled over",
	"1984-01-01 archive rolled over",
	"????-??-?? entry unreadable",
	"1984-02-14 relay sweep complete",
	"1984-03-03 transient logged",
}

// archiveLinks are the navigation links of the archive panel.
var archiveLinks = []string{"INDEX", "LOGS", "REELS", "NODES", "ABOUT"}

const pageSize = 4

func pageCount() int {
	return (len(archiveEntries) + pageSize - 1) / pageSize
}

// archivePage returns page n (wrapping) formatted as log lines.
func archivePage(n int) []string {
	n %= pageCount()
	start := n * pageSize
	end := min(start+pageSize, len(archiveEntries))
	out := make([]string, 0, end-start)
	for i, e := range archiveEntries[start:end] {
		out = append(out, fmt.Sprintf("> %04d %s", start+i+1, e))
	}
	return out
}
