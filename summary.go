package serverboard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultIconURL is shown when the status API supplies no favicon.
	DefaultIconURL = "/Resources/default-icon.png"

	coverURLFormat = "/Resources/servers/%s/cover.png"

	labelOnline  = "Online"
	labelOffline = "Offline"

	tooltipDynmap   = "Click to View Dynmap"
	tooltipNoDynmap = "No Dynmap for this Server"

	packVersionMarker = "version"
)

// Summary is the display-ready projection of a descriptor and its live
// status. It has no lifecycle of its own and is rebuilt every cycle.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Online      bool   `json:"online"`
	StatusLabel string `json:"status_label"`
	PlayersNow  int    `json:"players_now"`
	PlayersMax  int    `json:"players_max"`
	PlayersText string `json:"players_text"`
	VersionText string `json:"version_text"`

	// PackVersion is set only for descriptors with HasPackVer.
	PackVersion     string `json:"pack_version,omitempty"`
	PackVersionText string `json:"pack_version_text,omitempty"`

	MOTD      string `json:"motd,omitempty"`
	CoverURL  string `json:"cover_url"`
	IconURL   string `json:"icon_url"`
	DynmapURL string `json:"dynmap_url,omitempty"`
	Tooltip   string `json:"tooltip"`
}

// BuildSummary maps a descriptor and its live status to a [Summary].
//
// BuildSummary is pure: the same inputs always produce the same summary.
func BuildSummary(d ServerDescriptor, s LiveStatus) Summary {
	label := labelOffline
	if s.Online {
		label = labelOnline
	}

	motd := StripFormatting(s.MOTD)

	sum := Summary{
		ID:          d.ID,
		Name:        d.Name,
		Title:       fmt.Sprintf("%s: (%s)", d.Name, label),
		Online:      s.Online,
		StatusLabel: label,
		PlayersNow:  s.PlayersNow,
		PlayersMax:  s.PlayersMax,
		PlayersText: fmt.Sprintf("%d/%d Players Online", s.PlayersNow, s.PlayersMax),
		VersionText: "Server Running " + s.Software,
		MOTD:        motd,
		CoverURL:    fmt.Sprintf(coverURLFormat, d.ID),
		IconURL:     DefaultIconURL,
		DynmapURL:   d.DynmapURL,
		Tooltip:     tooltipNoDynmap,
	}

	if s.Favicon != "" {
		sum.IconURL = s.Favicon
	}
	if d.DynmapURL != "" {
		sum.Tooltip = tooltipDynmap
	}
	if d.HasPackVer {
		sum.PackVersion = ExtractPackVersion(motd)
		sum.PackVersionText = "Modpack Version " + sum.PackVersion
	}

	return sum
}

// ExtractPackVersion returns the text following the first case-insensitive
// occurrence of "version" in motd, with surrounding whitespace trimmed.
//
// When "version" does not occur the result is the empty string.
func ExtractPackVersion(motd string) string {
	idx := indexFold(motd, packVersionMarker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(motd[idx+len(packVersionMarker):])
}

// indexFold is a case-insensitive strings.Index for an ASCII needle. It
// compares byte windows so the returned index is valid for haystack even
// when lowering would change multi-byte rune widths.
func indexFold(haystack, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if strings.EqualFold(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}

// formatMarker introduces a Minecraft formatting code (§ + one character).
const formatMarker = '§'

// StripFormatting removes Minecraft formatting codes such as "§a" or "§l"
// from s.
func StripFormatting(s string) string {
	if !strings.ContainsRune(s, formatMarker) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == formatMarker {
			i += size
			if i < len(s) {
				_, next := utf8.DecodeRuneInString(s[i:])
				i += next
			}
			continue
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}
