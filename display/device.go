package display

// Device is a character screen that a Display renders to.
//
// Implementations must not block for long in any method other than Begin;
// a slow bus should be reported through Busy instead.
type Device interface {
	// Size returns the screen geometry in characters. It is called once,
	// when the Display is created.
	Size() (cols, rows int)
	// Begin performs one-time device initialization.
	Begin() error
	// Clear blanks the whole screen.
	Clear() error
	// Busy reports whether the device is still processing a previous
	// operation. It must not block.
	Busy() bool
	// SetRow moves the output cursor to the first column of screen line slot.
	SetRow(slot int) error
	// WriteChar writes c at the cursor and advances it by one column.
	WriteChar(c byte) error
}
