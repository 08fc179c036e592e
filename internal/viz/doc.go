// Package viz provides terminal visualization for finished ensemble runs.
//
// [Replay] is a Bubble Tea model that walks a time cursor through an
// [sde.Result], drawing the ensemble mean, a one standard deviation band
// and a few sample paths up to the cursor.
//
// # Key Bindings
//
//	Space - Pause/Resume replay
//	←/→   - Scrub the time cursor
//	+/-   - Change replay speed
//	Tab   - Next state coordinate
//	R     - Restart from t = 0
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
