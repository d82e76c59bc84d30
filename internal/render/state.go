package render

// State supplies the transient per-node state a render reads. The viewer implements it over
// its node store; the static implementations below cover output that has no interaction.
type State interface {
	// Expanded reports whether the composite at path is open.
	Expanded(path Path, depth int) bool
	// Revealed returns how many of total children have been revealed so far.
	Revealed(path Path, total int) int
	// Overflow returns the measured overflow state of a string-like scalar.
	Overflow(path Path) Overflow
}

// Overflow is the measured overflow state of a string-like scalar.
type Overflow struct {
	// CanOverflow is set once a measurement found the text needs more than one row.
	CanOverflow bool
	// Collapsed hides the text behind an ellipsis. Only meaningful when CanOverflow.
	Collapsed bool
}

// Initial is the state of a freshly mounted tree whose reveal has completed.
type Initial struct {
	Config Config
}

func (s Initial) Expanded(_ Path, depth int) bool { return s.Config.InitiallyExpanded(depth) }
func (Initial) Revealed(_ Path, total int) int    { return total }
func (Initial) Overflow(Path) Overflow            { return Overflow{} }

// FullyExpanded opens every composite and reveals every child.
type FullyExpanded struct{}

func (FullyExpanded) Expanded(Path, int) bool        { return true }
func (FullyExpanded) Revealed(_ Path, total int) int { return total }
func (FullyExpanded) Overflow(Path) Overflow         { return Overflow{} }
