// Package domain models the clock face: hand angles, digital readouts, dial
// geometry and hand wraparound.
//
// # Angles
//
// Angles are in degrees, measured clockwise from 12 o'clock, and always lie
// in [0, 360):
//
//	hour   = 30 * (hour mod 12) + minute/2   → 13:05 = 32.5
//	minute = 6 * minute                      → :30   = 180
//	second = 6 * second                      → :09   = 54
//
// Only whole minutes feed the hour hand and only whole seconds feed the
// minute hand, so each hand steps once per unit. Each angle drops back to 0
// when its unit rolls over: the second hand every minute, the minute hand
// every hour, the hour hand every twelve hours (noon and midnight).
//
// # Readouts
//
// Two formatting policies exist and exactly one is active per [Formatter]:
//
//	PolicyLocale  "01 : 05 : 09" + locale meridiem ("PM", "pm", "午後")
//	PolicyFixed   "01 : 05 : 09" + literal "AM"/"PM"
//
// In 24-hour mode the meridiem is always empty. Dates use the locale's
// pattern over day, abbreviated month and year; list-separator commas are
// removed ("Oct 14, 2026" → "Oct 14 2026").
//
// Locales come from the embedded locales.yaml table. Requested BCP-47 tags
// (or POSIX names such as "en_GB.UTF-8") are matched against it; anything
// that does not match falls back to en-US with a 12-hour default.
//
// # Dial geometry
//
// Coordinates are screen pixels relative to the dial center, y pointing
// down. Numeral i sits at i*30° - 90° on a circle of 0.74 * D/2, tick i at
// i*6° - 90° on 0.89 * D/2. Numerals carry a small fixed centering shift
// proportional to D so glyphs center on their point. A layout is a pure
// function of the diameter; a zero or unmeasured diameter produces a
// degenerate layout with every point at the origin.
//
// # Wraparound
//
// A hand whose angle decreases between two consecutive readings has wrapped
// past 12 o'clock. Animating that change would sweep the hand backwards
// around the dial, so the renderer applies it without a transition. The
// first reading after a mount has no predecessor and is also applied
// without a transition. See [WrapDetector].
package domain
