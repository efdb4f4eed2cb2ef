// Package domain models the line feed emitted by the SKCC Skimmer and the
// spots extracted from it.
//
// # Data Source
//
// The skimmer is an external process that watches the Reverse Beacon Network
// (RBN) and the SKCC Sked page and prints one human-readable report per line
// on its standard output. The format is not a stable wire format; it is a
// column-aligned report that happens to be machine readable. Every spot line
// starts with a zulu timestamp:
//
//	1612Z+K4AHO  ( 1235 T    Jim        FL) on  14059.9 by W3RGA(660mi, 11dB); YOU need them for Tx4
//	1613Z+K7QB   ( 5733 S    Bob        IN); Last spotted 2 minutes ago on 7058.0; YOU need them for Tx4
//	1642Z KA3LOC (  660 Sx6  Ric        KS); YOU need them for Tx4
//	1612Z AB4PP  (   32 Sx2  John-Paul  NC); YOU need them for BRAG,C; THEY need you for Sx3; STATUS: looking for /AF
//
// The skimmer rings the terminal bell by wrapping some lines in a BEL (0x07)
// byte; callers strip it before classification.
//
// # Line Kinds
//
// Classification is order sensitive, see [Classify]:
//
//	".<anything>"                         progress text, shown as feedback
//	"=========== SKCC Sked Page ============"  sked page reset sentinel
//	"HHMMZ..." with ") on " and " by "   RBN spot (new when flagged with '+')
//	"HHMMZ..." with "Last spotted ... on" RBN spot, relayed from the sked page
//	"HHMMZ..." with " need "             sked page spot
//
// Lines with a '+' flag are new spots. RBN-shaped lines without it are echoes
// of spots the skimmer already reported and are dropped.
//
// # Column Layout
//
// Fields are read from fixed byte offsets (end exclusive):
//
//	[0,5)   zulu time "HHMMZ"
//	5       new-spot flag '+'
//	[6,12)  callsign
//	[14,19) SKCC number
//	20      SKCC level (first character only: T, S, C, ...)
//	[25,35) name
//	[35,38) state/province/country
//	[42,51) frequency in kHz for "on ... by" RBN lines
//
// Everything after the closing parenthesis is a ';' separated list of
// segments: "YOU need them for ...", "THEY need you for ...", "STATUS: ...".
// Offsets are bounds-checked: a short line yields empty fields, never a panic.
//
// # Age
//
// Spot times carry no date. Ages are computed against the current UTC clock
// and wrap once across midnight, see [AgeMinutes]. Ages are never stored.
package domain
